package main

import (
	"os"

	"github.com/bianoble/protovend/cmd/protovend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
