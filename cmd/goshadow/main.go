// Command goshadow parses JSON and YAML documents into annotated values,
// validates them against an optional schema, applies data scrubbing rules
// and writes the result with its shadow metadata.
package main

import (
	"errors"
	"fmt"
	"os"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		if errors.Is(err, errIssuesFound) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
