// Package main is the entry point for the commitmark tool.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/commitmark/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
