package cmd

import (
	"fmt"

	"github.com/jsphweid/parle/batch"
	"github.com/spf13/cobra"
)

var (
	batchDecompress bool
	batchMaxFiles   int
)

func init() {
	batchCmd.Flags().BoolVarP(&batchDecompress, "decompress", "d", false, "decompress every .rle file instead")
	batchCmd.Flags().IntVar(&batchMaxFiles, "max", 0, "process at most this many files (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Compresses every file under a directory",
	Long: `Compresses every file under dir, skipping existing containers. Output
mirrors the tree under --out-dir, or sits next to each input when out_dir is
".". With --decompress, every .rle container is expanded instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := cfg.OutDir
		if outDir == "." {
			outDir = ""
		}
		results, err := batch.Run(cmd.Context(), store, args[0], batch.Options{
			Workers:    cfg.Workers,
			OutDir:     outDir,
			Decompress: batchDecompress,
			MaxFiles:   batchMaxFiles,
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		raw, packed, failed := batch.Totals(results)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "files: %v, failed: %v\n", len(results), failed)
		fmt.Fprintf(w, "raw bytes: %v, container bytes: %v\n", raw, packed)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}
