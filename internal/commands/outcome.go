package commands

import (
	"context"
	"sync"
)

// Outcome tallies the documents a filter command processed. Counts recorded
// before a failure are kept, so a partially rendered directory still reports
// what was written.
type Outcome struct {
	// Documents counts documents read.
	Documents int
	// Filtered counts documents whose HTML went through the math filter;
	// Markdown documents with `math: false` are read but not filtered.
	Filtered int
	// Changed counts filtered documents the filter rewrote. It is only known
	// where the command holds the unfiltered HTML.
	Changed int
	// BytesOut sums the HTML bytes produced.
	BytesOut int
	// Outputs lists files written; results sent to a writer are not listed.
	Outputs []string
}

// DocumentResult describes one processed document.
type DocumentResult struct {
	Output   string
	Bytes    int
	Filtered bool
	Changed  bool
}

type outcomeKey struct{}

type outcomeRecorder struct {
	mu      sync.Mutex
	outcome Outcome
}

func withOutcome(ctx context.Context) (context.Context, *outcomeRecorder) {
	rec := &outcomeRecorder{}
	return context.WithValue(ctx, outcomeKey{}, rec), rec
}

func (r *outcomeRecorder) snapshot() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.outcome
	out.Outputs = append([]string(nil), r.outcome.Outputs...)
	return out
}

// RecordDocument adds result to the outcome of the command executing under
// ctx. It is a no-op outside a Handler.
func RecordDocument(ctx context.Context, result DocumentResult) {
	rec, ok := ctx.Value(outcomeKey{}).(*outcomeRecorder)
	if !ok {
		return
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.outcome.Documents++
	rec.outcome.BytesOut += result.Bytes
	if result.Filtered {
		rec.outcome.Filtered++
		if result.Changed {
			rec.outcome.Changed++
		}
	}
	if result.Output != "" {
		rec.outcome.Outputs = append(rec.outcome.Outputs, result.Output)
	}
}

func (o Outcome) fields() map[string]any {
	return map[string]any{
		"documents": o.Documents,
		"filtered":  o.Filtered,
		"changed":   o.Changed,
		"bytes_out": o.BytesOut,
		"outputs":   len(o.Outputs),
	}
}
