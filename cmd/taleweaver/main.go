package main

import (
	"os"

	"github.com/bnema/taleweaver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
