// Package main is the entry point of the dbtool maintenance CLI.
package main

import (
	"os"

	"air-demand-service/cmd/dbtool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
