package commands

import (
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (wire v%d)\n", version.AppName, version.Current, version.WireVersion)
	},
}
