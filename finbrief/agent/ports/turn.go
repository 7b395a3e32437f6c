package agentports

import (
	"encoding/json"
	"time"
)

// Role identifies the kind of conversational event a Turn records.
type Role string

const (
	RoleUserRequest      Role = "user_request"
	RoleAssistant        Role = "assistant"
	RoleCapabilityResult Role = "capability_result"
	RoleSystemDirective  Role = "system_directive"
)

// Invocation is a single requested call to a named capability. The ID is
// unique within a run and is echoed back on the resolving result turn.
type Invocation struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Turn is one immutable event in the conversation sequence. Turns are never
// mutated after creation; state only ever grows by appending new turns.
type Turn struct {
	Role        Role
	Text        string
	Invocations []Invocation // non-empty only on assistant turns requesting capability calls
	SourceID    string       // on capability-result turns, the Invocation.ID that produced it
	CreatedAt   time.Time
}

// NewTurn builds a plain text turn with the creation time stamped.
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, CreatedAt: time.Now()}
}
