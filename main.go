// Package main is the entry point for the orb application
package main

import (
	"github.com/ethpandaops/orb/cmd"
)

func main() {
	cmd.Execute()
}
