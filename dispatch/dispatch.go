// Package dispatch runs the chunk codec over a buffer with one goroutine per
// chunk and stitches the results back together in chunk order.
package dispatch

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/jsphweid/parle/chunk"
	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/rle"
	"github.com/jsphweid/parle/util"
)

// Reporter receives one event per chunk once that chunk is finished.
// It may be called from several goroutines at once.
type Reporter interface {
	ChunkDone(ev model.ChunkEvent)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(ev model.ChunkEvent)

func (f ReporterFunc) ChunkDone(ev model.ChunkEvent) { f(ev) }

type nopReporter struct{}

func (nopReporter) ChunkDone(model.ChunkEvent) {}

type Option func(*Dispatcher)

// WithWorkers sets the chunk count. n <= 0 selects DefaultWorkers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		d.workers = n
	}
}

func WithReporter(r Reporter) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

type Dispatcher struct {
	workers  int
	reporter Reporter
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{reporter: nopReporter{}}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers <= 0 {
		d.workers = DefaultWorkers()
	}
	return d
}

// DefaultWorkers is the host's parallelism, never less than two.
func DefaultWorkers() int {
	return util.Max(runtime.NumCPU(), constants.MinDefaultWorkers)
}

func (d *Dispatcher) Workers() int {
	return d.workers
}

// Encode RLE-encodes data chunk by chunk. The result is identical to encoding
// each chunk sequentially and concatenating in order.
func (d *Dispatcher) Encode(data []byte) ([]byte, error) {
	ranges, err := chunk.Partition(len(data), d.workers)
	if err != nil {
		return nil, err
	}
	return d.run(model.OpEncode, ranges, func(r model.Range) ([]byte, error) {
		return rle.EncodeChunk(data, r), nil
	})
}

// Decode expands an RLE payload. Chunks are cut on pair boundaries, so an
// odd payload fails before any goroutine starts.
func (d *Dispatcher) Decode(payload []byte) ([]byte, error) {
	ranges, err := chunk.PartitionPairs(len(payload), d.workers)
	if err != nil {
		return nil, err
	}
	return d.run(model.OpDecode, ranges, func(r model.Range) ([]byte, error) {
		return rle.DecodeChunk(payload, r)
	})
}

type chunkFunc func(r model.Range) ([]byte, error)

func (d *Dispatcher) run(op model.Op, ranges []model.Range, fn chunkFunc) ([]byte, error) {
	// each goroutine owns exactly one slot; slots are read only after Wait
	outs := make([][]byte, len(ranges))
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r model.Range) {
			defer wg.Done()
			outs[i], errs[i] = fn(r)
			d.reporter.ChunkDone(model.ChunkEvent{
				Index:  i,
				Op:     op,
				Range:  r,
				OutLen: len(outs[i]),
				Err:    errs[i],
			})
		}(i, r)
	}
	wg.Wait()

	total := 0
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s chunk %d %s: %w", op, i, ranges[i], err)
		}
		total += len(outs[i])
	}

	merged := make([]byte, 0, total)
	for _, out := range outs {
		merged = append(merged, out...)
	}
	return merged, nil
}
