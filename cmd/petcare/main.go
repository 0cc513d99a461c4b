// Package main is the entrypoint for the petcare CLI.
package main

import (
	"os"

	"github.com/petcare-labs/petcare/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
