package backend

import (
	"context"
	"fmt"
	"time"
)

// DefaultBudget is the time each source gets before the chain moves on
const DefaultBudget = 60 * time.Second

// Chain tries its sources in priority order and returns the first
// non-empty extraction.
type Chain struct {
	Sources []Source

	// Budget bounds each attempt; zero means DefaultBudget
	Budget time.Duration

	// OnFailure, when set, is called for every failed attempt before the
	// next source is tried
	OnFailure func(*BackendExtractionError)
}

// NewChain creates a chain over sources with the default budget
func NewChain(sources ...Source) *Chain {
	return &Chain{Sources: sources, Budget: DefaultBudget}
}

// Extract runs the sources in order. It returns the extraction of the
// first source that produced text together with that source's rank (its
// index in Sources). When every source fails the error is an
// *AllBackendsFailedError.
func (c *Chain) Extract(ctx context.Context, path string) (*Extraction, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, -1, fmt.Errorf("extract %s: %w", path, err)
	}

	var attempts []*BackendExtractionError
	for rank, src := range c.Sources {
		ext, err := c.attempt(ctx, src, path)
		if err == nil {
			return ext, rank, nil
		}

		failure := &BackendExtractionError{Backend: src.Name(), Path: path, Err: err}
		attempts = append(attempts, failure)
		if c.OnFailure != nil {
			c.OnFailure(failure)
		}

		// the caller gave up; later sources would fail the same way
		if ctx.Err() != nil {
			break
		}
	}
	return nil, -1, &AllBackendsFailedError{Path: path, Attempts: attempts}
}

type attemptResult struct {
	ext *Extraction
	err error
}

// attempt runs one source under the chain budget. A source that ignores
// its context keeps running in its goroutine after the budget expires; its
// result is discarded.
func (c *Chain) attempt(ctx context.Context, src Source, path string) (*Extraction, error) {
	budget := c.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("%w: %v", ErrBackendPanic, r)}
			}
		}()
		ext, err := src.Extract(ctx, path)
		done <- attemptResult{ext: ext, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.ext.Empty() {
			return nil, ErrEmptyExtraction
		}
		if r.ext.Backend == "" {
			r.ext.Backend = src.Name()
		}
		return r.ext, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("budget %s: %w", budget, ctx.Err())
	}
}
