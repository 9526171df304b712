package main

import (
	"os"

	"github.com/Liquescent-Development/mcprobe/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
