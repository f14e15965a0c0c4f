package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fulldump/goconfig"

	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/pack"
)

// Append/scan benchmark against the engine, no HTTP in between.

type config struct {
	Dir     string `usage:"working directory for the benchmark device"`
	Records int    `usage:"number of records to append"`
	Pattern string `usage:"pattern to search after the append phase"`
}

func main() {

	c := config{
		Dir:     "bench-data",
		Records: 10000,
		Pattern: "NAME-9999",
	}
	goconfig.Read(&c)

	device, err := pack.NewDevice('A', c.Dir)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(-1)
	}

	name := fmt.Sprintf("B%d", time.Now().Unix()%10000000)
	session, err := datafile.Create(device, name, "name$,phone$,age%")
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(-1)
	}
	defer device.Remove(name)
	defer session.Close()

	t0 := time.Now()
	for i := 0; i < c.Records; i++ {
		session.Clear()
		session.SetString("name", fmt.Sprintf("NAME-%d", i))
		session.SetString("phone", fmt.Sprintf("555-%04d", i%10000))
		session.SetInt("age", int16(i%100))
		err = session.Append()
		if err != nil {
			fmt.Println("ERROR:", err.Error())
			os.Exit(-1)
		}
	}
	appendTime := time.Since(t0)
	fmt.Printf("append: %d records in %v (%.0f rec/s)\n",
		c.Records, appendTime, float64(c.Records)/appendTime.Seconds())

	t0 = time.Now()
	session.First()
	err = session.Find(c.Pattern)
	fmt.Printf("find %q: pos=%d err=%v in %v\n", c.Pattern, session.Pos(), err, time.Since(t0))

	t0 = time.Now()
	n := 0
	for err := session.First(); err == nil; err = session.Next() {
		if session.Read() == nil {
			n++
		}
	}
	fmt.Printf("scan: %d records in %v\n", n, time.Since(t0))
}
