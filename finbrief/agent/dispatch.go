package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sourcegraph/conc"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// Dispatcher fans out every invocation requested by one turn, concurrently,
// and folds the results back in invocation order. A failing capability is
// data, not a pipeline failure: its result turn carries an error payload and
// the remaining invocations are unaffected.
type Dispatcher struct {
	registry ports.Registry
	timeout  time.Duration // per-invocation budget
}

// NewDispatcher builds a dispatcher over the given registry. A non-positive
// timeout disables the per-invocation deadline.
func NewDispatcher(registry ports.Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, timeout: timeout}
}

// Dispatch resolves all requested invocations of the turn. Exactly one
// capability-result turn is produced per invocation; results are ordered by
// invocation order, never completion order, so archive output stays
// deterministic regardless of real latency.
func (d *Dispatcher) Dispatch(ctx context.Context, turn ports.Turn) []ports.Turn {
	if len(turn.Invocations) == 0 {
		return nil
	}

	results := make([]ports.Turn, len(turn.Invocations))
	var wg conc.WaitGroup
	for i, inv := range turn.Invocations {
		i, inv := i, inv
		wg.Go(func() {
			results[i] = d.invokeOne(ctx, inv)
		})
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) invokeOne(ctx context.Context, inv ports.Invocation) ports.Turn {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	out, err := d.registry.Invoke(ctx, inv.Name, inv.Args)
	text := ""
	if err != nil {
		text = errorPayload(err)
	} else if s, ok := out.(string); ok {
		text = s
	} else if raw, merr := json.Marshal(out); merr != nil {
		text = errorPayload(merr)
	} else {
		text = string(raw)
	}

	t := ports.NewTurn(ports.RoleCapabilityResult, text)
	t.SourceID = inv.ID
	return t
}

// errorPayload encodes a capability failure as structured data so it flows
// through the pipeline like any other result.
func errorPayload(err error) string {
	raw, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return `{"error":"unserializable capability error"}`
	}
	return string(raw)
}
