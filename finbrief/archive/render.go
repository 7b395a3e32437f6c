package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// directivePreviewLen bounds how much of a system directive the narrative
// sink shows.
const directivePreviewLen = 100

// renderTurn writes the human-readable rendering of one turn. Each role
// renders distinctly; capability results are reference-only stubs so the
// transcript never inlines large payloads. jsonName is the structured sink's
// filename, nameOf resolves an invocation id to its capability name.
func renderTurn(w io.Writer, t ports.Turn, jsonName string, nameOf func(id string) string) error {
	switch t.Role {
	case ports.RoleUserRequest:
		_, err := fmt.Fprintf(w, "## 👤 User Request\n> %s\n\n", t.Text)
		return err

	case ports.RoleAssistant:
		if len(t.Invocations) == 0 {
			_, err := fmt.Fprintf(w, "## 📝 Final Output\n%s\n\n", t.Text)
			return err
		}
		if _, err := fmt.Fprint(w, "## 🤖 Agent Reasoning & Actions\n"); err != nil {
			return err
		}
		if t.Text != "" {
			if _, err := fmt.Fprintf(w, "%s\n\n", t.Text); err != nil {
				return err
			}
		}
		for _, inv := range t.Invocations {
			if _, err := fmt.Fprintf(w, "### 🛠️ Requested Capability: `%s`\n```json\n%s\n```\n", inv.Name, indentJSON(inv.Args)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, "\n")
		return err

	case ports.RoleCapabilityResult:
		name := nameOf(t.SourceID)
		if name == "" {
			name = t.SourceID
		}
		_, err := fmt.Fprintf(w, "### 📬 Capability Result: `%s`\n> ✅ Data received. Full data: [%s](./%s)\n\n", name, jsonName, jsonName)
		return err

	case ports.RoleSystemDirective:
		preview := t.Text
		if len(preview) > directivePreviewLen {
			preview = preview[:directivePreviewLen] + "..."
		}
		_, err := fmt.Fprintf(w, "**System Context:** *%s*\n\n", preview)
		return err

	default:
		_, err := fmt.Fprintf(w, "## ❓ Unknown Turn (%s)\n%s\n\n", t.Role, t.Text)
		return err
	}
}

// renderHeader writes the transcript header, textually referencing the
// structured sink for traceability.
func renderHeader(w io.Writer, ticker, date, jsonName string) error {
	_, err := fmt.Fprintf(w, "# 🕵️ Financial Research Log: $%s\n*Date: %s*\n*Raw Data Context:* [`%s`](./%s)\n\n---\n\n",
		ticker, date, jsonName, jsonName)
	return err
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
