// Package main provides the leuko command-line tool.
package main

import (
	"os"

	"github.com/qraqras/leukocyte-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
