package main

import (
	"os"

	"github.com/payrecon-dev/payrecon/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
