// Package batch compresses or decompresses every file under a directory.
package batch

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/dispatch"
	"github.com/jsphweid/parle/file"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/util"
)

type Result struct {
	In    string
	Out   string
	Stats model.Stats
	Err   error
}

type Options struct {
	Workers    int
	OutDir     string // empty writes next to each input
	Decompress bool
	MaxFiles   int
	Logger     *log.Logger
}

// Run processes the files under root concurrently, at most Workers at a time;
// each file is also split across Workers goroutines. Results come back in path
// order. A file that fails is recorded in its Result and does not stop the
// rest. If ctx is cancelled, files not yet started fail with ctx's error and
// Run returns it.
func Run(ctx context.Context, store *file.Store, root string, opts Options) ([]Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Workers <= 0 {
		opts.Workers = dispatch.DefaultWorkers()
	}

	paths, err := gather(root, opts)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	sem := make(chan struct{}, opts.Workers)
	var (
		wg      sync.WaitGroup
		started atomic.Int64
	)
	for i, in := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = Result{In: in, Out: outputPath(root, in, opts), Err: err}
				return
			}
			opts.Logger.Printf("Processing %v of %v files\n", started.Add(1), len(paths))

			res := processFile(ctx, store, root, in, opts)
			if res.Err != nil {
				opts.Logger.Printf("Skipping %v because: %v\n", in, res.Err)
			}
			results[i] = res
		}(i, in)
	}
	wg.Wait()

	return results, ctx.Err()
}

func gather(root string, opts Options) ([]string, error) {
	if !opts.Decompress {
		return util.GatherPaths(root, opts.MaxFiles, constants.Extension)
	}
	all, err := util.GatherPaths(root, 0)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, p := range all {
		if strings.HasSuffix(p, constants.Extension) && (opts.MaxFiles == 0 || len(res) < opts.MaxFiles) {
			res = append(res, p)
		}
	}
	return res, nil
}

func processFile(ctx context.Context, store *file.Store, root, in string, opts Options) Result {
	res := Result{In: in, Out: outputPath(root, in, opts)}

	data, err := store.Read(ctx, in)
	if err != nil {
		res.Err = err
		return res
	}

	var out []byte
	if opts.Decompress {
		out, res.Stats, err = container.Decompress(data, container.WithWorkers(opts.Workers))
	} else {
		out, res.Stats, err = container.Compress(data, container.WithWorkers(opts.Workers))
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", in, err)
		return res
	}

	res.Err = store.Write(ctx, res.Out, out)
	return res
}

func outputPath(root, in string, opts Options) string {
	name := file.CompressedName
	if opts.Decompress {
		name = file.DecompressedName
	}
	if opts.OutDir == "" {
		return name(in)
	}
	rel, err := filepath.Rel(root, in)
	if err != nil {
		rel = filepath.Base(in)
	}
	return name(filepath.Join(opts.OutDir, rel))
}

// Totals sums the sizes of the successful results.
func Totals(results []Result) (raw, packed uint64, failed int) {
	var raws, packs []int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		raws = append(raws, r.Stats.RawSize)
		packs = append(packs, r.Stats.ContainerSize)
	}
	return util.Sum(raws), util.Sum(packs), failed
}
