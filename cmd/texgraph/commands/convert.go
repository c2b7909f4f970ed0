package commands

import (
	"bytes"
	"context"
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/wire"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	convertCompress string
	convertChecksum bool
)

var ConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a saved graph with a different container format",
	Example: `  texgraph convert city.txg city-raw.txg --compression none
  texgraph convert city-raw.txg city.txg --compression snappy`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var c wire.Compression
		switch convertCompress {
		case "none":
			c = wire.Uncompressed
		case "snappy":
			c = wire.Snappy
		default:
			return fmt.Errorf("unknown compression %q, want none or snappy", convertCompress)
		}
		s := wire.NoChecksum
		if convertChecksum {
			s = wire.CRC32
		}

		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		doc, _, err := a.ReadDocument(ctx, args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		var buf bytes.Buffer
		if err := wire.Encode(&buf, doc, wire.NewFormat(c, s)); err != nil {
			return err
		}
		store, key, err := a.Open(ctx, args[1])
		if err != nil {
			return err
		}
		if err := store.Put(ctx, key, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[0], args[1], humanize.Bytes(uint64(buf.Len())))
		return nil
	},
}

func init() {
	ConvertCmd.Flags().StringVar(&convertCompress, "compression", "snappy", "Payload compression: none or snappy")
	ConvertCmd.Flags().BoolVar(&convertChecksum, "checksum", true, "Store a CRC32 of the payload")
}
