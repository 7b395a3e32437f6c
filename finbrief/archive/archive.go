// Package archive durably records every turn of a run in two sinks: an
// append-only human-readable markdown transcript that stays tail-able while
// the run is live, and a structured JSON document that deduplicates large
// capability payloads behind reference strings.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

// Config configures the archive.
type Config struct {
	// Dir is where both artifacts are written. Created if missing; failure
	// to create it is fatal before any run work begins.
	Dir string
	// FlushInterval flushes the structured sink every N logged turns.
	// Values below 1 mean flush on every turn.
	FlushInterval int
}

// Archive is the dual-sink event record of one run. It owns its two file
// handles exclusively; all writes happen from the single driver goroutine.
type Archive struct {
	log zerolog.Logger

	ticker   string
	mdPath   string
	jsonPath string
	md       *os.File

	doc        *Document
	interval   int
	sinceFlush int
	dirty      bool

	// counters owned per archive instance, never shared across runs
	turnsLogged       int
	invocationsLogged int

	invocationNames map[string]string // invocation id → capability name
}

// Open creates a fresh archive pair for a ticker. The artifacts share a base
// name derived from the ticker and the start timestamp.
func Open(ticker string, cfg Config, log zerolog.Logger) (*Archive, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory %s: %w", cfg.Dir, err)
	}

	now := time.Now()
	base := filepath.Join(cfg.Dir, fmt.Sprintf("%s_RESEARCH_%s", ticker, now.Format("20060102_150405")))
	a := &Archive{
		log:             log,
		ticker:          ticker,
		mdPath:          base + ".md",
		jsonPath:        base + ".json",
		doc:             NewDocument(ticker, now),
		interval:        max(1, cfg.FlushInterval),
		invocationNames: make(map[string]string),
	}

	md, err := os.OpenFile(a.mdPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create narrative log %s: %w", a.mdPath, err)
	}
	if err := renderHeader(md, ticker, now.Format("2006-01-02 15:04:05"), filepath.Base(a.jsonPath)); err != nil {
		md.Close()
		return nil, fmt.Errorf("initialize narrative log %s: %w", a.mdPath, err)
	}
	a.md = md

	log.Info().Str("narrative", a.mdPath).Str("structured", a.jsonPath).Msg("archive initialized")
	return a, nil
}

// LogTurn records one turn in both sinks. The narrative write is synchronous
// and best-effort; the structured sink is flushed per the configured
// interval, and a failed flush is retried at the next flush point.
func (a *Archive) LogTurn(t ports.Turn) {
	a.turnsLogged++
	a.logStructured(t)
	a.logNarrative(t)
}

func (a *Archive) logStructured(t ports.Turn) {
	event := Event{
		Type:      string(t.Role),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if t.Role == ports.RoleCapabilityResult {
		name := a.invocationNames[t.SourceID]
		if name == "" {
			name = "unknown"
		}
		event.InvocationID = t.SourceID
		event.Capability = name
		event.ContentRef = RefPath(name)
		a.doc.Extract(name, parsePayload(t.Text))
	} else {
		event.Content = t.Text
	}

	for _, inv := range t.Invocations {
		event.Invocations = append(event.Invocations, EventInvocation{ID: inv.ID, Name: inv.Name, Args: inv.Args})
		a.invocationNames[inv.ID] = inv.Name
		a.doc.RecordInvocation(inv.Name)
		a.invocationsLogged++
	}

	a.doc.RawEvents = append(a.doc.RawEvents, event)
	a.dirty = true
	a.sinceFlush++

	if a.sinceFlush >= a.interval {
		if err := a.flush(); err != nil {
			a.log.Error().Err(err).Str("path", a.jsonPath).Msg("structured sink flush failed; will retry at next flush point")
		}
	}
}

func (a *Archive) logNarrative(t ports.Turn) {
	err := renderTurn(a.md, t, filepath.Base(a.jsonPath), func(id string) string {
		return a.invocationNames[id]
	})
	if err != nil {
		// best-effort sink: a failed transcript write never aborts the run
		a.log.Error().Err(err).Str("path", a.mdPath).Msg("narrative sink write failed")
	}
}

// flush rewrites the structured document to disk. No-op while clean.
func (a *Archive) flush() error {
	if !a.dirty {
		return nil
	}
	raw, err := json.MarshalIndent(a.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode structured document: %w", err)
	}
	if err := os.WriteFile(a.jsonPath, raw, 0o644); err != nil {
		return fmt.Errorf("write structured document: %w", err)
	}
	a.dirty = false
	a.sinceFlush = 0
	return nil
}

// Close performs the unconditional final flush and releases the file
// handles. The run is not complete until this returns.
func (a *Archive) Close() error {
	flushErr := a.flush()
	if err := a.md.Close(); err != nil {
		a.log.Error().Err(err).Str("path", a.mdPath).Msg("closing narrative sink failed")
	}
	return flushErr
}

// Paths reports the narrative and structured artifact locations.
func (a *Archive) Paths() (narrative, structured string) {
	return a.mdPath, a.jsonPath
}

// TurnsLogged reports how many turns this archive has recorded.
func (a *Archive) TurnsLogged() int { return a.turnsLogged }

// InvocationsLogged reports how many capability invocations were requested
// across recorded turns.
func (a *Archive) InvocationsLogged() int { return a.invocationsLogged }

// parsePayload decodes a capability result body, keeping it as a string when
// it is not JSON (search digests are plain text).
func parsePayload(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	return v
}
