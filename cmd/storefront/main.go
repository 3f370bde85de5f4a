// Package main provides the storefront command.
package main

import (
	"os"

	"github.com/leapstack-labs/storefront/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
