package main

import (
	"os"

	"github.com/conneroisu/lmscards/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
