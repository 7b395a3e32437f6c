package agent

import (
	"context"
	"fmt"
	"strings"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// Stages holds the three generation passes of the pipeline. Each stage is a
// pure function of the state from the caller's perspective: it receives the
// full history and returns only the turns to append.
type Stages struct {
	generator ports.Generator
	registry  ports.Registry
	limiter   ports.RateLimiter
}

// NewStages wires the generation passes to their collaborators.
func NewStages(generator ports.Generator, registry ports.Registry, limiter ports.RateLimiter) *Stages {
	return &Stages{generator: generator, registry: registry, limiter: limiter}
}

// Research runs the data-gathering pass with the generator bound to the full
// capability registry. On the very first step of a run it synthesizes a
// system directive enumerating every capability; the directive is returned
// ahead of the generator output so the archive records it.
func (s *Stages) Research(ctx context.Context, state State) ([]ports.Turn, error) {
	history := state.Turns
	var out []ports.Turn

	if len(history) == 1 && history[0].Role == ports.RoleUserRequest {
		bindings := s.registry.Bindings()
		names := make([]string, len(bindings))
		for i, b := range bindings {
			names[i] = b.Name
		}
		directive := ports.NewTurn(ports.RoleSystemDirective, researchDirective(state.Ticker, names))
		out = append(out, directive)
		history = append([]ports.Turn{directive}, history...)
	}

	reply, err := s.generate(ctx, history, s.registry.Bindings())
	if err != nil {
		return nil, fmt.Errorf("research stage: %w", err)
	}
	return append(out, reply), nil
}

// Narrate turns the gathered data into the report draft. The generator is
// invoked unbound: it must not request further invocations.
func (s *Stages) Narrate(ctx context.Context, state State) ([]ports.Turn, error) {
	history := append(copyTurns(state.Turns), ports.NewTurn(ports.RoleUserRequest, writerPrompt(state.Ticker)))
	reply, err := s.generate(ctx, history, nil)
	if err != nil {
		return nil, fmt.Errorf("narrate stage: %w", err)
	}
	return []ports.Turn{reply}, nil
}

// Finalize applies the formatting-only publish pass. Content, figures, and
// section order must not change; the output always ends with the canonical
// terminator.
func (s *Stages) Finalize(ctx context.Context, state State) ([]ports.Turn, error) {
	history := append(copyTurns(state.Turns), ports.NewTurn(ports.RoleUserRequest, publisherPrompt))
	reply, err := s.generate(ctx, history, nil)
	if err != nil {
		return nil, fmt.Errorf("finalize stage: %w", err)
	}
	reply.Text = ensureTerminator(reply.Text)
	return []ports.Turn{reply}, nil
}

func (s *Stages) generate(ctx context.Context, history []ports.Turn, bindings []ports.CapabilityBinding) (ports.Turn, error) {
	release, err := s.limiter.Acquire(ctx, "generate")
	if err != nil {
		return ports.Turn{}, fmt.Errorf("rate limit: %w", err)
	}
	defer release()
	return s.generator.Generate(ctx, history, bindings)
}

// ensureTerminator trims trailing whitespace and guarantees the report ends
// with the terminator line exactly once. Idempotent.
func ensureTerminator(text string) string {
	text = strings.TrimRight(text, " \t\n")
	if strings.HasSuffix(text, Terminator) {
		return text
	}
	return text + "\n\n" + Terminator
}

// copyTurns clones the turn slice so stage-local appends can never alias the
// run's history.
func copyTurns(turns []ports.Turn) []ports.Turn {
	out := make([]ports.Turn, len(turns))
	copy(out, turns)
	return out
}
