package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

func newTestStages(gen ports.Generator, registry ports.Registry) *Stages {
	return NewStages(gen, registry, nopLimiter{})
}

func TestResearch_FirstStepSynthesizesDirective(t *testing.T) {
	registry := newStubRegistry("get_company_profile", "get_financial_ratios")
	gen := &stubGenerator{script: []ports.Turn{
		assistantRequesting(ports.Invocation{ID: "i1", Name: "get_company_profile", Args: []byte(`{"ticker":"AMD"}`)}),
	}}

	turns, err := newTestStages(gen, registry).Research(context.Background(), NewState("AMD"))
	require.NoError(t, err)
	require.Len(t, turns, 2)

	directive := turns[0]
	assert.Equal(t, ports.RoleSystemDirective, directive.Role)
	assert.Contains(t, directive.Text, "AMD")
	assert.Contains(t, directive.Text, "1. get_company_profile")
	assert.Contains(t, directive.Text, "2. get_financial_ratios")
	assert.Contains(t, directive.Text, "Data collection complete.")

	assert.Equal(t, ports.RoleAssistant, turns[1].Role)

	// the generator saw the directive ahead of the user request, bound to
	// the full registry
	require.Len(t, gen.inputs, 1)
	require.Len(t, gen.inputs[0], 2)
	assert.Equal(t, ports.RoleSystemDirective, gen.inputs[0][0].Role)
	assert.Equal(t, ports.RoleUserRequest, gen.inputs[0][1].Role)
	require.Len(t, gen.bindings[0], 2)
	assert.Equal(t, "get_company_profile", gen.bindings[0][0].Name)
}

func TestResearch_LaterStepsSkipDirective(t *testing.T) {
	registry := newStubRegistry("get_company_profile")
	gen := &stubGenerator{script: []ports.Turn{
		ports.NewTurn(ports.RoleAssistant, "Data collection complete."),
	}}

	state := Append(NewState("AMD"),
		ports.NewTurn(ports.RoleSystemDirective, "gather data"),
		ports.NewTurn(ports.RoleAssistant, "thinking"))

	turns, err := newTestStages(gen, registry).Research(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, ports.RoleAssistant, turns[0].Role)
}

func TestNarrate_UnboundWithWriterPrompt(t *testing.T) {
	registry := newStubRegistry("get_company_profile")
	gen := &stubGenerator{script: []ports.Turn{
		ports.NewTurn(ports.RoleAssistant, "# TSLA Deep Dive"),
	}}

	result := ports.NewTurn(ports.RoleCapabilityResult, `{"error":"segment data unavailable"}`)
	result.SourceID = "i1"
	state := Append(NewState("TSLA"), result)

	turns, err := newTestStages(gen, registry).Narrate(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	// unbound pass
	assert.Nil(t, gen.bindings[0])

	// the writer prompt rides on the generator input but is never part of
	// the returned turns
	input := gen.inputs[0]
	last := input[len(input)-1]
	assert.Contains(t, last.Text, "Senior Chief Investment Officer")
	assert.Contains(t, last.Text, "TSLA Deep Dive")

	// upstream capability errors stay visible to the writer as data
	joined := ""
	for _, turn := range input {
		joined += turn.Text + "\n"
	}
	assert.Contains(t, joined, "segment data unavailable")

	// state history itself was not mutated
	assert.Len(t, state.Turns, 2)
}

func TestFinalize_AppendsTerminator(t *testing.T) {
	registry := newStubRegistry("get_company_profile")
	gen := &stubGenerator{script: []ports.Turn{
		ports.NewTurn(ports.RoleAssistant, "# Report\n\nclean text\n\n"),
	}}

	turns, err := newTestStages(gen, registry).Finalize(context.Background(), NewState("KO"))
	require.NoError(t, err)
	require.Len(t, turns, 1)

	assert.True(t, strings.HasSuffix(turns[0].Text, Terminator))
	assert.Nil(t, gen.bindings[0])

	input := gen.inputs[0]
	assert.Contains(t, input[len(input)-1].Text, "meticulous report publisher")
}

func TestStages_GeneratorErrorsAreWrapped(t *testing.T) {
	registry := newStubRegistry("get_company_profile")
	gen := &stubGenerator{err: fmt.Errorf("connection reset")}
	stages := newTestStages(gen, registry)

	_, err := stages.Research(context.Background(), NewState("F"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "research stage")

	_, err = stages.Narrate(context.Background(), NewState("F"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "narrate stage")

	_, err = stages.Finalize(context.Background(), NewState("F"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalize stage")
}

func TestEnsureTerminator(t *testing.T) {
	assert.Equal(t, "report body\n\n"+Terminator, ensureTerminator("report body"))
	assert.Equal(t, "report body\n\n"+Terminator, ensureTerminator("report body\n\n"+Terminator))
	assert.Equal(t, "report body\n\n"+Terminator, ensureTerminator("report body\n\n"+Terminator+"\n\n"))
	assert.Equal(t, Terminator, ensureTerminator(Terminator))
}
