package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "ls [location]",
	Short: "List saved documents in a directory or S3 prefix",
	Example: `  texgraph ls ./graphs
  texgraph ls s3://my-bucket/graphs/ --s3-endpoint http://localhost:4566`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := "."
		if len(args) == 1 {
			loc = args[0]
		}
		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		keys, err := a.List(ctx, loc)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}
