package agent

import (
	"fmt"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// State is the conversation threaded through the research graph. It is owned
// by exactly one in-flight run; the graph driver is the only writer.
type State struct {
	Ticker string
	Turns  []ports.Turn
}

// NewState seeds a run with the initial user request for a ticker.
func NewState(ticker string) State {
	return State{
		Ticker: ticker,
		Turns:  []ports.Turn{ports.NewTurn(ports.RoleUserRequest, fmt.Sprintf("Research %s stock.", ticker))},
	}
}

// Append returns a new state whose turn sequence is the old one plus the
// given turns. The ticker is immutable after creation and history is never
// replaced or reordered; stages return new turns, only the driver merges.
func Append(s State, turns ...ports.Turn) State {
	merged := make([]ports.Turn, 0, len(s.Turns)+len(turns))
	merged = append(merged, s.Turns...)
	merged = append(merged, turns...)
	return State{Ticker: s.Ticker, Turns: merged}
}

// Last returns the most recent turn. Callers must not ask on an empty state.
func (s State) Last() ports.Turn {
	return s.Turns[len(s.Turns)-1]
}

// Unresolved returns the ids of requested invocations that no capability
// result turn has answered. A non-empty result at run end is a defect.
func Unresolved(s State) []string {
	resolved := make(map[string]bool)
	for _, t := range s.Turns {
		if t.Role == ports.RoleCapabilityResult && t.SourceID != "" {
			resolved[t.SourceID] = true
		}
	}
	var missing []string
	for _, t := range s.Turns {
		for _, inv := range t.Invocations {
			if !resolved[inv.ID] {
				missing = append(missing, inv.ID)
			}
		}
	}
	return missing
}
