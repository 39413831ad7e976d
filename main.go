// Package main is the entry point for pgshell, an interactive PostgreSQL
// shell with named parameters.
package main

import (
	"pgshell/cli/cmd"
)

func main() {
	cmd.Execute()
}
