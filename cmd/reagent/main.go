package main

import (
	"os"

	"github.com/reagent-ai/reagent/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
