package ledger

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is the number of files read at once when a
// Processor does not set its own limit.
const DefaultMaxConcurrency = 20

// Aggregation describes how one report reduces ledger lines.
// T must be a reference type (map or pointer): Fold mutates it in place.
type Aggregation[T any] struct {
	// New returns an empty accumulator.
	New func() T
	// Fold applies one line to an accumulator.
	Fold func(acc T, line Line)
	// Merge adds src into dst. It must be associative and commutative
	// in its effect on totals.
	Merge func(dst, src T)
}

// Processor reads ledger files from FS with at most MaxConcurrency files in flight.
type Processor struct {
	FS             fs.FS
	MaxConcurrency int
	Logger         *slog.Logger
}

// NewProcessor creates a Processor over fsys. A limit below one falls back
// to DefaultMaxConcurrency.
func NewProcessor(fsys fs.FS, limit int, logger *slog.Logger) *Processor {
	if limit < 1 {
		limit = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{FS: fsys, MaxConcurrency: limit, Logger: logger}
}

// Fold reduces each named file to a partial result concurrently, then merges
// the partials into a single accumulator in the order names were given.
//
// Each file gets its own partial, so no accumulator is written by two
// goroutines. Merging happens on the calling goroutine after every read has
// finished. The first read failure cancels the remaining reads and is
// returned; there is no partial result.
func Fold[T any](ctx context.Context, p *Processor, names []string, agg Aggregation[T]) (T, error) {
	start := time.Now()
	partials := make([]T, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.MaxConcurrency)

	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			part := agg.New()
			if err := ScanFile(gctx, p.FS, name, func(line Line) {
				agg.Fold(part, line)
			}); err != nil {
				return err
			}
			partials[i] = part
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to fold ledger files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	acc := agg.New()
	for _, part := range partials {
		agg.Merge(acc, part)
	}

	p.Logger.Debug("folded ledger files",
		"file_count", len(names),
		"max_concurrency", p.MaxConcurrency,
		"duration_ms", time.Since(start).Milliseconds())

	return acc, nil
}
