package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
	"github.com/finbrief/finbrief/finbrief/capabilities"
)

func openTestArchive(t *testing.T, cfg Config) *Archive {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	a, err := Open("AAPL", cfg, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func capabilityResult(id, text string) ports.Turn {
	t := ports.NewTurn(ports.RoleCapabilityResult, text)
	t.SourceID = id
	return t
}

func requestTurn(invs ...ports.Invocation) ports.Turn {
	t := ports.NewTurn(ports.RoleAssistant, "")
	t.Invocations = invs
	return t
}

// logRun replays a representative full run into the archive: user request,
// directive, capability round with a duplicate-name invocation, and the two
// writing passes.
func logRun(a *Archive) {
	a.LogTurn(ports.NewTurn(ports.RoleUserRequest, "Research AAPL stock."))
	a.LogTurn(ports.NewTurn(ports.RoleSystemDirective, strings.Repeat("gather everything ", 20)))
	a.LogTurn(requestTurn(
		ports.Invocation{ID: "i1", Name: capabilities.NameProfile, Args: []byte(`{"ticker":"AAPL"}`)},
		ports.Invocation{ID: "i2", Name: capabilities.NameStatements, Args: []byte(`{"ticker":"AAPL"}`)},
		ports.Invocation{ID: "i3", Name: capabilities.NameProfile, Args: []byte(`{"ticker":"AAPL"}`)},
	))
	a.LogTurn(capabilityResult("i1", `{"symbol":"AAPL","companyName":"Apple Inc.","price":231.5}`))
	a.LogTurn(capabilityResult("i2", `{"income_statement":[{"revenue":1}],"balance_sheet":[{"cash":2}],"cash_flow":[{"fcf":3}]}`))
	a.LogTurn(capabilityResult("i3", `{"symbol":"AAPL","companyName":"Apple Inc.","price":232.0}`))
	a.LogTurn(ports.NewTurn(ports.RoleAssistant, "# AAPL Deep Dive"))
	a.LogTurn(ports.NewTurn(ports.RoleAssistant, "# AAPL Deep Dive\n\nEnd of report."))
}

func TestArchive_NarrativeSink(t *testing.T) {
	a := openTestArchive(t, Config{})
	logRun(a)
	require.NoError(t, a.Close())

	mdPath, jsonPath := a.Paths()
	raw, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	md := string(raw)

	// header references the structured sink by filename
	assert.Contains(t, md, "# 🕵️ Financial Research Log: $AAPL")
	assert.Contains(t, md, filepath.Base(jsonPath))

	assert.Contains(t, md, "## 👤 User Request\n> Research AAPL stock.")

	// directives render as a bounded preview
	assert.Contains(t, md, "**System Context:** *")
	assert.Contains(t, md, "...*")
	assert.NotContains(t, md, strings.Repeat("gather everything ", 20))

	// invocation requests render with their arguments
	assert.Contains(t, md, "### 🛠️ Requested Capability: `"+capabilities.NameProfile+"`")
	assert.Contains(t, md, `"ticker": "AAPL"`)

	// results are reference stubs: payloads never appear inline
	assert.Contains(t, md, "### 📬 Capability Result: `"+capabilities.NameProfile+"`")
	assert.NotContains(t, md, "Apple Inc.")

	assert.Contains(t, md, "## 📝 Final Output")
	assert.Contains(t, md, "End of report.")
}

func TestArchive_StructuredSink(t *testing.T) {
	a := openTestArchive(t, Config{})
	logRun(a)
	require.NoError(t, a.Close())

	_, jsonPath := a.Paths()
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	// metadata: ticker, and the invoked-capability list deduplicated in
	// first-seen order
	assert.Equal(t, "AAPL", doc.Metadata.Ticker)
	assert.Equal(t, []string{capabilities.NameProfile, capabilities.NameStatements}, doc.Metadata.CapabilitiesInvoked)

	// one event per logged turn
	require.Len(t, doc.RawEvents, 8)

	// result events reference extracted_data rather than embedding payloads
	profileEvent := doc.RawEvents[3]
	assert.Equal(t, "capability_result", profileEvent.Type)
	assert.Equal(t, "i1", profileEvent.InvocationID)
	assert.Equal(t, capabilities.NameProfile, profileEvent.Capability)
	assert.Equal(t, "extracted_data.profile", profileEvent.ContentRef)
	assert.Nil(t, profileEvent.Content)

	statementsEvent := doc.RawEvents[4]
	assert.Equal(t, "extracted_data.{income_statement, balance_sheet, cash_flow}", statementsEvent.ContentRef)

	// each payload is stored exactly once, in its extracted slot; the later
	// duplicate profile result overwrote the earlier one
	profile, ok := doc.Extracted.Profile.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 232.0, profile["price"])
	assert.Equal(t, 1, strings.Count(string(raw), "Apple Inc."))

	// statements payload is split into its three slots
	assert.NotNil(t, doc.Extracted.IncomeStatement)
	assert.NotNil(t, doc.Extracted.BalanceSheet)
	assert.NotNil(t, doc.Extracted.CashFlow)

	assert.Equal(t, 8, a.TurnsLogged())
	assert.Equal(t, 3, a.InvocationsLogged())
}

func TestArchive_FlushIntervalBatches(t *testing.T) {
	a := openTestArchive(t, Config{FlushInterval: 3})
	_, jsonPath := a.Paths()

	a.LogTurn(ports.NewTurn(ports.RoleUserRequest, "Research AAPL stock."))
	a.LogTurn(ports.NewTurn(ports.RoleAssistant, "thinking"))

	// below the interval: nothing on disk yet
	_, err := os.Stat(jsonPath)
	assert.True(t, os.IsNotExist(err))

	a.LogTurn(ports.NewTurn(ports.RoleAssistant, "still thinking"))
	_, err = os.Stat(jsonPath)
	assert.NoError(t, err)

	// Close flushes the tail unconditionally
	a.LogTurn(ports.NewTurn(ports.RoleAssistant, "done"))
	require.NoError(t, a.Close())

	var doc Document
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc.RawEvents, 4)
}

func TestArchive_NonJSONPayloadKeptAsText(t *testing.T) {
	a := openTestArchive(t, Config{})
	a.LogTurn(requestTurn(ports.Invocation{ID: "s1", Name: capabilities.NameEarningsSummary, Args: []byte(`{"ticker":"AAPL"}`)}))
	a.LogTurn(capabilityResult("s1", "**Source:** https://example.com\nEPS beat by 4%."))
	require.NoError(t, a.Close())

	_, jsonPath := a.Paths()
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	digest, ok := doc.Extracted.EarningsSummary.(string)
	require.True(t, ok)
	assert.Contains(t, digest, "EPS beat by 4%.")
}

func TestArchive_UnknownInvocationID(t *testing.T) {
	a := openTestArchive(t, Config{})
	a.LogTurn(capabilityResult("orphan", `{"ok":true}`))
	require.NoError(t, a.Close())

	_, jsonPath := a.Paths()
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Len(t, doc.RawEvents, 1)
	assert.Equal(t, "unknown", doc.RawEvents[0].Capability)
	assert.Equal(t, "extracted_data.unknown", doc.RawEvents[0].ContentRef)
}

func TestOpen_UnwritableDirIsFatal(t *testing.T) {
	// a regular file where the directory should be
	path := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Open("AAPL", Config{Dir: path}, zerolog.Nop())
	require.Error(t, err)
}
