package main

import (
	"os"

	"github.com/moratsam/oclbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
