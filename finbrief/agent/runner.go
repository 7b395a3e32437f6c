package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// RunArchive is the durable dual-sink record of a run.
type RunArchive interface {
	TurnObserver
	// Paths reports the narrative and structured artifact locations.
	Paths() (narrative, structured string)
	// Close performs the unconditional final flush.
	Close() error
}

// Result is what a completed run hands back to the caller.
type Result struct {
	FinalText      string
	NarrativePath  string
	StructuredPath string
}

// Runner is the run entry point: it opens a fresh archive, seeds state for
// the ticker, and drives the graph to completion.
type Runner struct {
	graph       *Graph
	openArchive func(ticker string) (RunArchive, error)
	log         zerolog.Logger
}

// NewRunner builds a runner. openArchive is called once per run so archives
// and their counters are never shared between runs.
func NewRunner(graph *Graph, openArchive func(ticker string) (RunArchive, error), log zerolog.Logger) *Runner {
	return &Runner{graph: graph, openArchive: openArchive, log: log}
}

// Run executes one research run for the ticker. It either completes with a
// finished report and two populated archive files, or fails with whatever
// partial archive was flushed before the failure point.
func (r *Runner) Run(ctx context.Context, ticker string) (*Result, error) {
	arc, err := r.openArchive(ticker)
	if err != nil {
		// No place to record the run: fatal before any work begins.
		return nil, fmt.Errorf("open archive: %w", err)
	}

	state := NewState(ticker)
	arc.LogTurn(state.Turns[0])

	final, runErr := r.graph.Run(ctx, state, arc)

	if closeErr := arc.Close(); closeErr != nil {
		if runErr == nil {
			runErr = fmt.Errorf("final archive flush: %w", closeErr)
		} else {
			r.log.Error().Err(closeErr).Msg("final archive flush failed after run error")
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	narrative, structured := arc.Paths()
	return &Result{
		FinalText:      final.Last().Text,
		NarrativePath:  narrative,
		StructuredPath: structured,
	}, nil
}
