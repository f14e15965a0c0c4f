package datafile

import (
	"fmt"
	"os"

	"github.com/datapak/datapak/pack"
)

func Environment(f func(device *pack.Device)) {
	dir, err := os.MkdirTemp("", "datafile-*")
	if err != nil {
		panic(fmt.Errorf("create temp device dir: %w", err))
	}
	defer os.RemoveAll(dir)

	device, err := pack.NewDevice('A', dir)
	if err != nil {
		panic(err)
	}

	f(device)
}
