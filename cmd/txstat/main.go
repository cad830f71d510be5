package main

import (
	"os"

	"github.com/genc-murat/txstat/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
