package agent

import (
	"context"
	"fmt"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// Node names one state of the orchestration graph.
type Node string

const (
	NodeStart    Node = "start"
	NodeResearch Node = "research"
	NodeDispatch Node = "dispatch"
	NodeNarrate  Node = "narrate"
	NodeFinalize Node = "finalize_format"
	NodeEnd      Node = "end"
)

// TurnObserver receives every turn the instant the driver appends it to
// state. Observation never feeds back into routing.
type TurnObserver interface {
	LogTurn(turn ports.Turn)
}

// Route picks the node after research: a turn carrying invocation requests
// goes to the dispatcher, anything else means data gathering is done and the
// run proceeds to narrate. This is the graph's only branch point.
func Route(s State) Node {
	if len(s.Last().Invocations) > 0 {
		return NodeDispatch
	}
	return NodeNarrate
}

// Graph is the fixed pipeline topology:
//
//	start → research → [route: dispatch|narrate]
//	dispatch → narrate
//	narrate → finalize_format → end
//
// Dispatch never loops back to research; the single data-gathering round is
// what bounds run cost and latency.
type Graph struct {
	stages     *Stages
	dispatcher *Dispatcher
	tracer     ports.Tracer
}

// NewGraph wires the stage and dispatcher nodes into the fixed topology.
func NewGraph(stages *Stages, dispatcher *Dispatcher, tracer ports.Tracer) *Graph {
	return &Graph{stages: stages, dispatcher: dispatcher, tracer: tracer}
}

// Run drives the state through the graph until the end node. Steps execute
// synchronously relative to each other; only invocations within a dispatch
// step run concurrently. The driver is the sole writer of state: every
// stage's output passes through one append point, where the observer sees it.
// A generator failure terminates the run with the partial state returned for
// postmortem.
func (g *Graph) Run(ctx context.Context, state State, observer TurnObserver) (State, error) {
	ctx, finish := g.tracer.StartSpan(ctx, "graph_run", map[string]any{
		"ticker": state.Ticker,
	})

	node := NodeResearch
	var runErr error

	for node != NodeEnd && runErr == nil {
		g.tracer.Event(ctx, "node_enter", map[string]any{"node": string(node)})

		switch node {
		case NodeResearch:
			turns, err := g.stages.Research(ctx, state)
			if err != nil {
				runErr = err
				break
			}
			state = g.append(state, observer, turns)
			node = Route(state)

		case NodeDispatch:
			turns := g.dispatcher.Dispatch(ctx, state.Last())
			state = g.append(state, observer, turns)
			node = NodeNarrate

		case NodeNarrate:
			turns, err := g.stages.Narrate(ctx, state)
			if err != nil {
				runErr = err
				break
			}
			state = g.append(state, observer, turns)
			node = NodeFinalize

		case NodeFinalize:
			turns, err := g.stages.Finalize(ctx, state)
			if err != nil {
				runErr = err
				break
			}
			state = g.append(state, observer, turns)
			node = NodeEnd

		default:
			runErr = fmt.Errorf("graph reached unknown node %q", node)
		}
	}

	if runErr == nil {
		if missing := Unresolved(state); len(missing) > 0 {
			runErr = fmt.Errorf("run ended with %d unresolved invocations: %v", len(missing), missing)
		}
	}

	finish(runErr)
	return state, runErr
}

func (g *Graph) append(state State, observer TurnObserver, turns []ports.Turn) State {
	state = Append(state, turns...)
	if observer != nil {
		for _, t := range turns {
			observer.LogTurn(t)
		}
	}
	return state
}
