package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// OpenAIConfig configures the chat-completions generator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default https://api.openai.com/v1
	Model   string
	Timeout time.Duration
}

// OpenAIGenerator implements the Generator port against an OpenAI-compatible
// chat completions endpoint.
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client *http.Client
	log    zerolog.Logger
}

// NewOpenAIGenerator builds the generator, applying defaults for base URL
// and timeout.
func NewOpenAIGenerator(cfg OpenAIConfig, log zerolog.Logger) *OpenAIGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenAIGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
}

type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatToolSpec `json:"function"`
}

type chatToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate maps the conversation onto the chat wire format, posts it, and
// maps the single returned message back to a turn. When bindings are nil any
// tool calls the backend hallucinates are stripped, honoring the unbound
// contract.
func (g *OpenAIGenerator) Generate(ctx context.Context, turns []ports.Turn, bindings []ports.CapabilityBinding) (ports.Turn, error) {
	req := chatRequest{
		Model:    g.cfg.Model,
		Messages: toChatMessages(turns),
	}
	for _, b := range bindings {
		req.Tools = append(req.Tools, chatTool{
			Type: "function",
			Function: chatToolSpec{
				Name:        b.Name,
				Description: b.Description,
				Parameters:  json.RawMessage(b.JSONSchema),
			},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return ports.Turn{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ports.Turn{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ports.Turn{}, fmt.Errorf("chat completion call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Turn{}, fmt.Errorf("read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return ports.Turn{}, fmt.Errorf("decode chat response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return ports.Turn{}, fmt.Errorf("chat completion failed: %s", msg)
	}
	if len(parsed.Choices) == 0 {
		return ports.Turn{}, fmt.Errorf("chat completion returned no choices")
	}

	msg := parsed.Choices[0].Message
	turn := ports.NewTurn(ports.RoleAssistant, msg.Content)

	if len(msg.ToolCalls) > 0 && bindings == nil {
		g.log.Warn().Int("count", len(msg.ToolCalls)).Msg("unbound generation returned tool calls; stripping")
	} else {
		for _, tc := range msg.ToolCalls {
			id := tc.ID
			if id == "" {
				id = uuid.NewString()
			}
			args := json.RawMessage(tc.Function.Arguments)
			if !json.Valid(args) {
				args = json.RawMessage("{}")
			}
			turn.Invocations = append(turn.Invocations, ports.Invocation{
				ID:   id,
				Name: tc.Function.Name,
				Args: args,
			})
		}
	}
	return turn, nil
}

// toChatMessages flattens turns into wire messages, exhaustively over the
// four roles.
func toChatMessages(turns []ports.Turn) []chatMessage {
	msgs := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case ports.RoleUserRequest:
			msgs = append(msgs, chatMessage{Role: "user", Content: t.Text})
		case ports.RoleSystemDirective:
			msgs = append(msgs, chatMessage{Role: "system", Content: t.Text})
		case ports.RoleAssistant:
			m := chatMessage{Role: "assistant", Content: t.Text}
			for _, inv := range t.Invocations {
				m.ToolCalls = append(m.ToolCalls, chatToolCall{
					ID:   inv.ID,
					Type: "function",
					Function: chatFunction{
						Name:      inv.Name,
						Arguments: string(inv.Args),
					},
				})
			}
			msgs = append(msgs, m)
		case ports.RoleCapabilityResult:
			msgs = append(msgs, chatMessage{Role: "tool", Content: t.Text, ToolCallID: t.SourceID})
		}
	}
	return msgs
}

var _ ports.Generator = (*OpenAIGenerator)(nil)
