package archive

import (
	"encoding/json"
	"time"

	"github.com/finbrief/finbrief/finbrief/capabilities"
)

// Document is the structured sink: one evolving JSON document per run.
// Capability payloads live exactly once, in Extracted; RawEvents point at
// them through reference path strings.
type Document struct {
	Metadata  Metadata  `json:"metadata"`
	RawEvents []Event   `json:"raw_events"`
	Extracted Extracted `json:"extracted_data"`
}

// Metadata identifies the run and tracks the deduplicated set of capability
// names invoked so far.
type Metadata struct {
	Ticker              string   `json:"ticker"`
	StartedAt           string   `json:"timestamp"`
	CapabilitiesInvoked []string `json:"capabilities_invoked"`
}

// EventInvocation is a requested capability call as archived on an assistant
// event. Arguments are small, so they are stored in full.
type EventInvocation struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Event is the persisted projection of one turn. Capability-result events
// carry ContentRef instead of Content.
type Event struct {
	Type         string            `json:"type"`
	Timestamp    string            `json:"timestamp"`
	Content      any               `json:"content,omitempty"`
	Invocations  []EventInvocation `json:"requested_invocations,omitempty"`
	InvocationID string            `json:"invocation_id,omitempty"`
	Capability   string            `json:"capability,omitempty"`
	ContentRef   string            `json:"content_ref,omitempty"`
}

// Extracted is the fixed-shape projection of capability payloads, keyed by
// capability. Each field holds only the latest result for its capability.
type Extracted struct {
	Profile         any            `json:"profile"`
	Metrics         any            `json:"metrics"`
	News            any            `json:"news"`
	IncomeStatement any            `json:"income_statement"`
	BalanceSheet    any            `json:"balance_sheet"`
	CashFlow        any            `json:"cash_flow"`
	Segmentation    any            `json:"revenue_segmentation"`
	Estimates       any            `json:"analyst_estimates"`
	EarningsSummary any            `json:"earnings_summary"`
	Ownership       any            `json:"ownership"`
	Other           map[string]any `json:"other,omitempty"`
}

// NewDocument initializes the structured sink for a run.
func NewDocument(ticker string, start time.Time) *Document {
	return &Document{
		Metadata: Metadata{
			Ticker:              ticker,
			StartedAt:           start.Format(time.RFC3339),
			CapabilitiesInvoked: []string{},
		},
		RawEvents: []Event{},
	}
}

// RefPath returns the reference string stored in raw_events for a capability
// result, pointing into extracted_data.
func RefPath(capability string) string {
	switch capability {
	case capabilities.NameProfile:
		return "extracted_data.profile"
	case capabilities.NameRatios:
		return "extracted_data.metrics"
	case capabilities.NameNews:
		return "extracted_data.news"
	case capabilities.NameStatements:
		return "extracted_data.{income_statement, balance_sheet, cash_flow}"
	case capabilities.NameSegmentation:
		return "extracted_data.revenue_segmentation"
	case capabilities.NameEstimates:
		return "extracted_data.analyst_estimates"
	case capabilities.NameEarningsSummary:
		return "extracted_data.earnings_summary"
	case capabilities.NameOwnership:
		return "extracted_data.ownership"
	default:
		return "extracted_data." + capability
	}
}

// Extract stores a capability payload at its slot, overwriting any previous
// result of the same capability. The statements payload is split into its
// three statement sets.
func (d *Document) Extract(capability string, payload any) {
	switch capability {
	case capabilities.NameProfile:
		d.Extracted.Profile = payload
	case capabilities.NameRatios:
		d.Extracted.Metrics = payload
	case capabilities.NameNews:
		d.Extracted.News = payload
	case capabilities.NameStatements:
		if m, ok := payload.(map[string]any); ok {
			if v, ok := m["income_statement"]; ok {
				d.Extracted.IncomeStatement = v
			}
			if v, ok := m["balance_sheet"]; ok {
				d.Extracted.BalanceSheet = v
			}
			if v, ok := m["cash_flow"]; ok {
				d.Extracted.CashFlow = v
			}
			return
		}
		// error payloads and other non-statement shapes land whole
		d.Extracted.IncomeStatement = payload
	case capabilities.NameSegmentation:
		d.Extracted.Segmentation = payload
	case capabilities.NameEstimates:
		d.Extracted.Estimates = payload
	case capabilities.NameEarningsSummary:
		d.Extracted.EarningsSummary = payload
	case capabilities.NameOwnership:
		d.Extracted.Ownership = payload
	default:
		if d.Extracted.Other == nil {
			d.Extracted.Other = make(map[string]any)
		}
		d.Extracted.Other[capability] = payload
	}
}

// RecordInvocation notes a requested capability in the deduplicated metadata
// list.
func (d *Document) RecordInvocation(capability string) {
	for _, name := range d.Metadata.CapabilitiesInvoked {
		if name == capability {
			return
		}
	}
	d.Metadata.CapabilitiesInvoked = append(d.Metadata.CapabilitiesInvoked, capability)
}
