package capabilities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// Registry is the fixed, named set of capabilities a run may invoke. It is
// built once at startup and read-only afterwards; invocation arguments are
// validated against each capability's declared JSON schema before dispatch.
type Registry struct {
	order   []string
	caps    map[string]ports.Capability
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry registers the capabilities in order, compiling their schemas.
func NewRegistry(caps ...ports.Capability) (*Registry, error) {
	r := &Registry{
		caps:    make(map[string]ports.Capability, len(caps)),
		schemas: make(map[string]*gojsonschema.Schema, len(caps)),
	}
	for _, c := range caps {
		name := c.Name()
		if _, dup := r.caps[name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(c.Schema()))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", name, err)
		}
		r.caps[name] = c
		r.schemas[name] = schema
		r.order = append(r.order, name)
	}
	return r, nil
}

// Bindings returns the capability set in registration order.
func (r *Registry) Bindings() []ports.CapabilityBinding {
	bindings := make([]ports.CapabilityBinding, 0, len(r.order))
	for _, name := range r.order {
		c := r.caps[name]
		bindings = append(bindings, ports.CapabilityBinding{
			Name:        c.Name(),
			Description: c.Description(),
			JSONSchema:  c.Schema(),
		})
	}
	return bindings
}

// Names returns the registered capability names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Invoke validates the arguments and runs the named capability.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	c, ok := r.caps[name]
	if !ok {
		return nil, fmt.Errorf("unknown capability %q", name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := r.schemas[name].Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return nil, fmt.Errorf("arguments for %q are not valid JSON: %w", name, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("arguments for %q rejected: %s", name, strings.Join(problems, "; "))
	}

	return c.Invoke(ctx, args)
}

var _ ports.Registry = (*Registry)(nil)
