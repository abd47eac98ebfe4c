package main

import (
	"os"

	"github.com/mathmaster/mathmaster/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
