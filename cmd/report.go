package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [dir]",
	Short: "Creates a report",
	Long:  `Summarizes every container under dir (default: the configured out_dir).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.OutDir
		if len(args) == 1 {
			dir = args[0]
		}
		r, err := analyzeContainers(cmd.Context(), dir)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	},
}

type containersReport struct {
	numFiles        int
	numCompressed   int
	numUncompressed int
	invalid         []string
	containerSizes  []int
	decodedSizes    []int
}

func analyzeContainers(ctx context.Context, dir string) (containersReport, error) {
	var report containersReport

	paths, err := util.GatherPaths(dir, 0)
	if err != nil {
		return report, err
	}
	for _, path := range paths {
		if !strings.HasSuffix(path, constants.Extension) {
			continue
		}
		report.numFiles += 1

		data, err := store.Read(ctx, path)
		if err != nil {
			return report, err
		}
		h, err := container.Inspect(data)
		if err != nil {
			report.invalid = append(report.invalid, path)
			continue
		}
		if h.Mode == model.ModeCompressed {
			report.numCompressed += 1
		} else {
			report.numUncompressed += 1
		}
		report.containerSizes = append(report.containerSizes, len(data))
		report.decodedSizes = append(report.decodedSizes, h.DecodedSize)
	}
	return report, nil
}

func printReport(w io.Writer, r containersReport) {
	fmt.Fprintf(w, "containers: %v\n", r.numFiles)
	fmt.Fprintf(w, "compressed: %v\n", r.numCompressed)
	fmt.Fprintf(w, "uncompressed: %v\n", r.numUncompressed)
	fmt.Fprintf(w, "invalid: %v\n", len(r.invalid))
	for _, path := range r.invalid {
		fmt.Fprintf(w, "  %v\n", path)
	}
	if len(r.containerSizes) == 0 {
		return
	}

	packed := util.Sum(r.containerSizes)
	raw := util.Sum(r.decodedSizes)
	fmt.Fprintf(w, "container bytes: %v\n", packed)
	fmt.Fprintf(w, "decoded bytes: %v\n", raw)
	if raw > 0 {
		fmt.Fprintf(w, "overall ratio: %.3f\n", float64(packed)/float64(raw))
	}

	smallest, largest := r.containerSizes[0], r.containerSizes[0]
	for _, size := range r.containerSizes[1:] {
		smallest = util.Min(smallest, size)
		largest = util.Max(largest, size)
	}
	fmt.Fprintf(w, "smallest container: %v\n", smallest)
	fmt.Fprintf(w, "largest container: %v\n", largest)
}
