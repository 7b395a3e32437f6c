package capabilities

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
	"github.com/finbrief/finbrief/finbrief/websearch"
)

// Capability names backed by web search. These replace transcript and
// holder endpoints that are costly on the data API.
const (
	NameEarningsSummary = "get_earnings_summary_via_search"
	NameOwnership       = "get_ownership_via_search"
)

// EarningsSummaryCapability searches for the latest earnings call summary,
// management guidance, and strategic updates.
type EarningsSummaryCapability struct {
	client *websearch.Client
}

func NewEarningsSummaryCapability(client *websearch.Client) *EarningsSummaryCapability {
	return &EarningsSummaryCapability{client: client}
}

func (c *EarningsSummaryCapability) Name() string { return NameEarningsSummary }
func (c *EarningsSummaryCapability) Description() string {
	return "Searches for the latest earnings call summary, management guidance, and strategic updates. Provides qualitative analysis including management outlook and key takeaways."
}
func (c *EarningsSummaryCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *EarningsSummaryCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s latest earnings call transcript summary key takeaways management guidance future outlook", ticker)
	digest, err := c.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("earnings summary search: %w", err)
	}
	if digest == "" {
		return "No earnings summary found.", nil
	}
	return digest, nil
}

// OwnershipCapability searches for major institutional holders and ownership
// structure.
type OwnershipCapability struct {
	client *websearch.Client
}

func NewOwnershipCapability(client *websearch.Client) *OwnershipCapability {
	return &OwnershipCapability{client: client}
}

func (c *OwnershipCapability) Name() string { return NameOwnership }
func (c *OwnershipCapability) Description() string {
	return "Searches for major institutional holders and ownership structure. Useful for smart-money flow and institutional confidence analysis."
}
func (c *OwnershipCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *OwnershipCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s top institutional holders ownership structure percentage shares", ticker)
	digest, err := c.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ownership search: %w", err)
	}
	if digest == "" {
		return "No ownership data found.", nil
	}
	return digest, nil
}

var (
	_ ports.Capability = (*EarningsSummaryCapability)(nil)
	_ ports.Capability = (*OwnershipCapability)(nil)
)
