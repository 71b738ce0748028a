package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/jsphweid/parle/file"
	"github.com/spf13/cobra"
)

func init() {
	watchCmd.Flags().Duration("debounce", 0, "quiet period after the last change before recompressing")
	bindFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <file> [output]",
	Short: "Recompresses a file every time it changes",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		out := file.CompressedName(in)
		if len(args) == 2 {
			out = args[1]
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cmd.OutOrStdout(), in, out)
	},
}

// watch compresses in once, then again after every burst of writes to it.
// The parent directory is watched rather than the file so that editors which
// replace the file by renaming are still picked up.
func watch(ctx context.Context, w io.Writer, in, out string) error {
	if _, err := compressFile(ctx, w, in, out, false); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(in)); err != nil {
		return fmt.Errorf("could not watch %s: %w", in, err)
	}
	target := filepath.Clean(in)

	// mu is held for a whole recompress; once stopped is set under it, no
	// pending or running recompress can touch out or w.
	var (
		mu      sync.Mutex
		stopped bool
	)
	debounced := debounce.New(cfg.Watch.Debounce)
	recompress := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		if _, err := compressFile(ctx, w, in, out, false); err != nil {
			logger.Printf("recompress failed: %v", err)
		}
	}
	defer func() {
		debounced(func() {})
		mu.Lock()
		stopped = true
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				debounced(recompress)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error: %v", err)
		}
	}
}
