package agentports

import "context"

// CapabilityBinding advertises one capability to the generation backend.
type CapabilityBinding struct {
	Name        string // unique logical name
	Description string // concise doc for model selection
	JSONSchema  []byte // JSON schema for args
}

// Generator is the abstraction over the external text-generation service.
// Given the ordered conversation history it produces exactly one new turn.
// With non-empty bindings the returned turn may carry requested invocations;
// with nil bindings it must not.
type Generator interface {
	Generate(ctx context.Context, turns []Turn, bindings []CapabilityBinding) (Turn, error)
}
