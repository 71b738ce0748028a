package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/file"
	"github.com/jsphweid/parle/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(decompressCmd)
}

var decompressCmd = &cobra.Command{
	Use:   "decompress <input> [output]",
	Short: "Decompresses a parle container",
	Long: `Decompresses a parle container. The output defaults to the input path
without its ".rle" extension, or with ".out" appended when it has none.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		out := file.DecompressedName(in)
		if len(args) == 2 {
			out = args[1]
		}
		_, err := decompressFile(cmd.Context(), cmd.OutOrStdout(), in, out)
		return err
	},
}

func decompressFile(ctx context.Context, w io.Writer, in, out string) (model.Stats, error) {
	data, err := store.Read(ctx, in)
	if err != nil {
		return model.Stats{}, err
	}

	unpacked, stats, err := container.Decompress(data, codecOptions()...)
	if err != nil {
		return stats, fmt.Errorf("decompressing %s: %w", in, err)
	}
	if stats.Mode == model.ModeCompressed {
		fmt.Fprintln(w, "Data was compressed using RLE.")
	} else {
		fmt.Fprintln(w, "Data was stored uncompressed.")
	}
	fmt.Fprintf(w, "Compressed size: %d, Decompressed size: %d\n", stats.ContainerSize-constants.HeaderSize, stats.RawSize)

	if err := store.Write(ctx, out, unpacked); err != nil {
		return stats, fmt.Errorf("failed to write decompressed file: %w", err)
	}
	fmt.Fprintf(w, "Decompression successful: %s -> %s\n", in, out)
	return stats, nil
}
