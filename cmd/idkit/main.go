package main

import (
	"os"

	"idkit/cmd/idkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
