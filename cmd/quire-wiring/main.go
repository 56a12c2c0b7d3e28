package main

import (
	"os"

	"github.com/bayleafwalker/quire/cmd/quire-wiring/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
