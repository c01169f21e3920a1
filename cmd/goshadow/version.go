package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			fmt.Fprintf(a.stdout, "goshadow version: %s\n", Version)
			fmt.Fprintf(a.stdout, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "Build date: %s\n", BuildDate)
			fmt.Fprintf(a.stdout, "Go version: %s\n", goVer)
		},
	}
}
