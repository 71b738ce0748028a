package cmd

import (
	"github.com/jsphweid/parle/container"
	"github.com/jsphweid/parle/dispatch"
	"github.com/jsphweid/parle/model"
)

// logReporter prints chunk results. log.Logger serializes writes, so
// concurrent chunks never interleave their lines.
type logReporter struct {
	verbose bool
}

func (r logReporter) ChunkDone(ev model.ChunkEvent) {
	if ev.Err != nil {
		logger.Printf("%s chunk %d %s failed: %v", ev.Op, ev.Index, ev.Range, ev.Err)
		return
	}
	if r.verbose {
		logger.Printf("%s chunk %d %s -> %d bytes", ev.Op, ev.Index, ev.Range, ev.OutLen)
	}
}

func codecOptions() []container.Option {
	var rep dispatch.Reporter = logReporter{verbose: cfg.Verbose}
	return []container.Option{
		container.WithWorkers(cfg.Workers),
		container.WithReporter(rep),
	}
}
