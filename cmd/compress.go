package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/db"
	"github.com/jsphweid/parle/file"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/util"
	"github.com/spf13/cobra"
)

var verifyCompress bool

func init() {
	compressCmd.Flags().BoolVar(&verifyCompress, "verify", false, "decode the result again and compare digests before writing")
	compressCmd.Flags().String("manifest-table", "", "DynamoDB table to record the result in")
	bindFlag("manifest.table", compressCmd.Flags().Lookup("manifest-table"))
	rootCmd.AddCommand(compressCmd)
}

var compressCmd = &cobra.Command{
	Use:   "compress <input> [output]",
	Short: "Compresses a file",
	Long: `Compresses a file into a parle container. The output defaults to the
input path with ".rle" appended. Paths may be local or s3://bucket/key.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		out := file.CompressedName(in)
		if len(args) == 2 {
			out = args[1]
		}
		_, err := compressFile(cmd.Context(), cmd.OutOrStdout(), in, out, verifyCompress)
		return err
	},
}

func compressFile(ctx context.Context, w io.Writer, in, out string, verify bool) (model.Stats, error) {
	data, err := store.Read(ctx, in)
	if err != nil {
		return model.Stats{}, err
	}

	packed, stats, err := container.Compress(data, codecOptions()...)
	if err != nil {
		return stats, fmt.Errorf("compressing %s: %w", in, err)
	}
	fmt.Fprintf(w, "Original size: %d, Compressed size: %d\n", stats.RawSize, stats.EncodedSize)
	if stats.Mode == model.ModeUncompressed {
		fmt.Fprintln(w, "Compression not effective. Saving uncompressed data.")
	}

	digest := util.Digest(data)
	if verify {
		unpacked, _, err := container.Decompress(packed, codecOptions()...)
		if err != nil {
			return stats, fmt.Errorf("verifying %s: %w", in, err)
		}
		if got := util.Digest(unpacked); got != digest || !bytes.Equal(unpacked, data) {
			return stats, fmt.Errorf("verifying %s: digest %s does not match %s", in, got, digest)
		}
		fmt.Fprintf(w, "Verified digest %s\n", digest)
	}

	if err := store.Write(ctx, out, packed); err != nil {
		return stats, fmt.Errorf("failed to write compressed file: %w", err)
	}

	if cfg.Manifest.Table != "" {
		if err := recordManifest(ctx, out, stats, digest); err != nil {
			return stats, err
		}
	}

	fmt.Fprintf(w, "Compression successful: %s -> %s (%.1f%%)\n", in, out, stats.Ratio()*100)
	return stats, nil
}

func recordManifest(ctx context.Context, name string, stats model.Stats, digest string) error {
	manifests, err := db.New(cfg.Manifest)
	if err != nil {
		return err
	}
	return manifests.Put(ctx, model.Manifest{
		Name:          name,
		Mode:          stats.Mode,
		RawSize:       int64(stats.RawSize),
		ContainerSize: int64(stats.ContainerSize),
		Digest:        digest,
		Workers:       stats.Workers,
		CreatedAt:     time.Now(),
	})
}
