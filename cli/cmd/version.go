package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/VismaKosice/pension-engine/types"
)

// VersionCommand returns the version command.
// Reports the canonical project version; release tags must match it.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(*cli.Context) error {
			fmt.Fprintf(os.Stdout, "pensiond %s (commit: %s)\n", types.Version, commit)
			return nil
		},
	}
}
