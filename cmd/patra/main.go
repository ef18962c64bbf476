// The patra command line evaluates applicants offline, validates rule
// documents and bootstraps API clients.
package main

import (
	"os"

	"patra/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
