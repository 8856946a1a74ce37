// Package main provides the entry point for the aoclb server and CLI.
package main

import (
	"github.com/colthorp/aoclb/internal/cli"
)

func main() {
	cli.Execute()
}
