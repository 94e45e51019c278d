package main

import (
	"os"

	"github.com/flowlens/flowlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
