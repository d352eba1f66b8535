package main

import (
	"os"

	"github.com/ignite-gym/ignitegym/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
