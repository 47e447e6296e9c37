// Package screen drives classification over a stream of reads: a fixed pool
// of workers scores reads against the shared read-only panel, verdicts route
// each read into the clean or discarded partition, and a Summary accumulates
// counts. Input is consumed one read at a time, so memory stays flat no
// matter how large the file is.
package screen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/seqtoolkit/bcscreen/internal/classify"
	"github.com/seqtoolkit/bcscreen/internal/panel"
	"github.com/seqtoolkit/bcscreen/internal/scoring"
	"github.com/seqtoolkit/bcscreen/internal/seqio"
)

// ErrInvalidThreshold is returned for a non-positive score threshold.
var ErrInvalidThreshold = errors.New("invalid min_score threshold")

// Source supplies reads one at a time, returning io.EOF at end of stream.
// seqio.Reader satisfies it.
type Source interface {
	Next() (seqio.Record, error)
}

// Sink receives one partition of the output. seqio.Writer satisfies it;
// writes must not block the caller for long (the seqio writer batches and
// flushes on a background goroutine).
type Sink interface {
	Write(rec seqio.Record)
}

// Options configure a Screener.
type Options struct {
	// Threshold is the minimum best score for a read to count as
	// contaminated. Must be >= 1.
	Threshold int
	// Threads is the worker count; 0 means GOMAXPROCS. With Threads == 1
	// the output partitions preserve input order; with more workers the
	// order is completion order.
	Threads int
	// Progress, when set, is called with the monotonically increasing
	// number of reads processed, every ProgressEvery reads and once at end
	// of stream. It runs on the collector goroutine and must not block.
	Progress      func(processed uint64)
	ProgressEvery int
}

// Screener classifies a read stream against one panel and scoring model.
// The panel and model are read-only and shared by all workers without
// locking.
type Screener struct {
	panel *panel.Panel
	model scoring.Model
	opts  Options
}

// New validates options and builds a Screener. Threshold validation happens
// here, before any read is pulled, so a bad configuration never produces
// partial output.
func New(p *panel.Panel, m scoring.Model, opts Options) (*Screener, error) {
	if opts.Threshold < 1 {
		return nil, fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidThreshold, opts.Threshold)
	}
	if opts.Threads <= 0 {
		opts.Threads = runtime.GOMAXPROCS(0)
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100
	}
	return &Screener{panel: p, model: m, opts: opts}, nil
}

type outcome struct {
	rec     seqio.Record
	verdict classify.Verdict
}

// Run consumes src until io.EOF, routing each read to clean or discarded and
// returning the final Summary.
//
// Cancellation is cooperative: when ctx is done the feeder stops pulling new
// reads, in-flight classifications finish and are written out, and Run
// returns ctx.Err(). An empty stream returns a zeroed Summary and no error.
func (s *Screener) Run(ctx context.Context, src Source, clean, discarded Sink) (*Summary, error) {
	jobs := make(chan seqio.Record, s.opts.Threads*2)
	results := make(chan outcome, s.opts.Threads*2)
	summary := NewSummary()

	var wg sync.WaitGroup
	wg.Add(s.opts.Threads)
	for w := 0; w < s.opts.Threads; w++ {
		go func() {
			defer wg.Done()
			for rec := range jobs {
				v := classify.Classify(rec.ID, rec.Seq, s.panel, s.model, s.opts.Threshold)
				summary.add(v.Contaminated, v.Barcode)
				results <- outcome{rec: rec, verdict: v}
			}
		}()
	}

	// Collector: single goroutine owns the sinks and progress reporting.
	var (
		cwg       sync.WaitGroup
		processed uint64
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for o := range results {
			if o.verdict.Contaminated {
				discarded.Write(o.rec)
			} else {
				clean.Write(o.rec)
			}
			n := atomic.AddUint64(&processed, 1)
			if s.opts.Progress != nil && n%uint64(s.opts.ProgressEvery) == 0 {
				s.opts.Progress(n)
			}
		}
	}()

	// Feed reads until EOF, source error, or cancellation.
	var srcErr error
feed:
	for {
		select {
		case <-ctx.Done():
			break feed
		default:
		}

		rec, err := src.Next()
		if err != nil {
			if err != io.EOF {
				srcErr = err
			}
			break
		}

		select {
		case jobs <- rec:
		case <-ctx.Done():
			break feed
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if s.opts.Progress != nil {
		if n := atomic.LoadUint64(&processed); n%uint64(s.opts.ProgressEvery) != 0 || n == 0 {
			s.opts.Progress(n)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, srcErr
}
