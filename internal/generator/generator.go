// Package generator wraps the text-generation backend behind a single
// prompt-in, text-out call.
package generator

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
)

var ErrEmptyResponse = errors.New("generator returned no content")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type instrumented struct {
	next    Generator
	metrics *metrics.Metrics
}

// Instrument records the latency and outcome of every call made through g.
func Instrument(g Generator, m *metrics.Metrics) Generator {
	if m == nil {
		return g
	}
	return &instrumented{next: g, metrics: m}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	i.metrics.ObserveGeneration(time.Since(start), err)
	return out, err
}
