package pack

import (
	"fmt"
	"os"
)

func Environment(f func(device *Device)) {
	dir, err := os.MkdirTemp("", "device-*")
	if err != nil {
		panic(fmt.Errorf("create temp device dir: %w", err))
	}
	defer os.RemoveAll(dir)

	device, err := NewDevice('A', dir)
	if err != nil {
		panic(err)
	}

	f(device)
}
