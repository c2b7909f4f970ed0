package commands

import (
	"context"

	"github.com/DrSkyle/texgraph/pkg/tui"
	"github.com/spf13/cobra"
)

var viewWrite bool

var ViewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Browse a graph document in the terminal",
	Example: `  texgraph view city.txg
  texgraph view s3://maps/city.txg --write`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		g, err := a.Load(ctx, args[0])
		if err != nil {
			return err
		}
		defer g.Dispose(context.Background())

		if err := tui.Run(g, args[0]); err != nil {
			return err
		}
		if viewWrite {
			return a.Save(ctx, args[0], g)
		}
		return nil
	},
}

func init() {
	ViewCmd.Flags().BoolVarP(&viewWrite, "write", "w", false, "Write selection changes back to the document on exit")
}
