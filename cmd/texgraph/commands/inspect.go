package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/DrSkyle/texgraph/internal/app"
	"github.com/DrSkyle/texgraph/pkg/wire"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var InspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Describe saved graph files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		a, err := startApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())
		for _, path := range args {
			if err := inspect(ctx, a, cmd.OutOrStdout(), path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

func inspect(ctx context.Context, a *app.App, w io.Writer, path string) error {
	doc, h, err := a.ReadDocument(ctx, path)
	if err != nil {
		return err
	}
	compress, checksum := h.Format.Split()
	crc := "none"
	if checksum == wire.CRC32 {
		crc = "crc32"
	}
	m := doc.Manifest
	raw := uint64(len(doc.Vertices)*m.VertexRecordSize() + len(doc.Edges)*m.EdgeRecordSize())

	fmt.Fprintf(w, "# %s\n", path)
	fmt.Fprintf(w, "# wire v%d, %s, checksum %s\n", h.Version, compress, crc)
	fmt.Fprintf(w, "# %s stored payload, %s of records\n",
		humanize.Bytes(uint64(h.Stored)), humanize.Bytes(raw))
	fmt.Fprintf(w, "# %s vertices, %s edges\n",
		humanize.Comma(int64(len(doc.Vertices))), humanize.Comma(int64(len(doc.Edges))))

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(m)
}
