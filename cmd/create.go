package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Creates a text file from lines typed on stdin",
	Long:  `Reads lines from stdin until an empty line (or EOF) and writes them to <file>.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "Enter text lines (empty line to finish):")
		return createFile(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0])
	},
}

func createFile(ctx context.Context, r io.Reader, w io.Writer, filename string) error {
	var buf bytes.Buffer
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if err := store.Write(ctx, filename, buf.Bytes()); err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	fmt.Fprintf(w, "File %q created.\n", filename)
	return nil
}
