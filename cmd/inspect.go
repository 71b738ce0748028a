package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/db"
	"github.com/jsphweid/parle/util"
	"github.com/spf13/cobra"
)

var inspectDigest bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectDigest, "digest", false, "decompress and print the xxh3 digest of the contents")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <container>",
	Short: "Inspects a container",
	Long: `Prints the header, payload size, pair count and decoded size of a
container. With --digest, or when a manifest table is configured, the
contents are decoded and their digest printed and checked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func inspect(ctx context.Context, w io.Writer, path string) error {
	data, err := store.Read(ctx, path)
	if err != nil {
		return err
	}
	h, err := container.Inspect(data)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	fmt.Fprintf(w, "mode: %v\n", h.Mode)
	fmt.Fprintf(w, "container bytes: %v\n", len(data))
	fmt.Fprintf(w, "payload bytes: %v\n", h.PayloadSize)
	fmt.Fprintf(w, "pairs: %v\n", h.Pairs)
	fmt.Fprintf(w, "decoded bytes: %v\n", h.DecodedSize)
	if h.DecodedSize > 0 {
		fmt.Fprintf(w, "ratio: %.3f\n", float64(len(data))/float64(h.DecodedSize))
	}

	if !inspectDigest && cfg.Manifest.Table == "" {
		return nil
	}
	raw, _, err := container.Decompress(data, codecOptions()...)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	digest := util.Digest(raw)
	fmt.Fprintf(w, "digest: %v\n", digest)

	if cfg.Manifest.Table == "" {
		return nil
	}
	manifests, err := db.New(cfg.Manifest)
	if err != nil {
		return err
	}
	rec, ok, err := manifests.Get(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "manifest: no record")
		return nil
	}
	if rec.Digest != digest {
		return fmt.Errorf("%s: digest %s does not match manifest %s", path, digest, rec.Digest)
	}
	fmt.Fprintf(w, "manifest: ok (recorded %v)\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
