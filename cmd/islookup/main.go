// Package main is the entry point for the islookup CLI.
package main

import (
	"github.com/donaldgifford/intellisearch-client/cmd/islookup/cmd"
)

func main() {
	cmd.Execute()
}
