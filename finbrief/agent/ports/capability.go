package agentports

import (
	"context"
	"encoding/json"
)

// Capability is a named external data or search operation invocable with
// structured arguments. Implementations return structured data (or a typed
// not-found payload) rather than failing when the upstream source is empty.
type Capability interface {
	Name() string
	Description() string
	Schema() []byte
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// Registry resolves capability names to invocable implementations. It is
// read-only shared configuration; dispatch targets are stateless.
type Registry interface {
	// Bindings returns the full capability set in registration order.
	Bindings() []CapabilityBinding
	// Invoke runs the named capability with the given JSON arguments.
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}
