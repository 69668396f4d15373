package main

import (
	"os"

	"github.com/savora-app/savora/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
