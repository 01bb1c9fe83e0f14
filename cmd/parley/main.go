// Parley CLI entry point
//
// Parley is a terminal chat client that speaks to multiple LLM providers
// through a single conversation surface, with per-provider remembered
// settings and running token and cost accounting.
package main

import "github.com/jbctechsolutions/parley/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
