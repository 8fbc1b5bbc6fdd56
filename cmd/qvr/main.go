// Package main is the entry point for the quiver CLI.
package main

import (
	"os"

	"github.com/quiver-mcp/quiver/cmd/qvr/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
