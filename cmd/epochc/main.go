package main

import (
	"os"

	"github.com/cwbudde/go-epoch/cmd/epochc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
