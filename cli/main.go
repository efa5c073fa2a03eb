package main

import (
	"os"

	"github.com/sqlforge/sqlforge/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
