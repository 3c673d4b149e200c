// Package main provides the entry point for the haystackd CLI.
package main

import (
	"os"

	"github.com/haystackd/haystackd/cmd/haystackd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
