// Package main provides the CLI for xmlviewls, editor tooling for XML views.
package main

import (
	"os"

	"github.com/leapstack-labs/xmlviewls/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
