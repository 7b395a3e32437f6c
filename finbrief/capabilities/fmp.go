package capabilities

import (
	"context"
	"encoding/json"
	"errors"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
	"github.com/finbrief/finbrief/finbrief/fmp"
)

// Capability names backed by the FMP client.
const (
	NameProfile      = "get_company_profile"
	NameRatios       = "get_financial_ratios"
	NameStatements   = "get_financial_statements"
	NameSegmentation = "get_revenue_segmentation"
	NameEstimates    = "get_analyst_estimates"
	NameNews         = "get_stock_news"
)

// ProfileCapability fetches the company profile (CEO, description, sector,
// price, market cap).
type ProfileCapability struct {
	client *fmp.Client
}

func NewProfileCapability(client *fmp.Client) *ProfileCapability {
	return &ProfileCapability{client: client}
}

func (c *ProfileCapability) Name() string { return NameProfile }
func (c *ProfileCapability) Description() string {
	return "Fetches the company profile (CEO, description, sector, price, market cap). Useful for understanding what the company does and its general standing."
}
func (c *ProfileCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *ProfileCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	profile, err := c.client.GetProfile(ctx, ticker)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("company profile", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// RatiosCapability fetches key financial ratios for the trailing twelve
// months.
type RatiosCapability struct {
	client *fmp.Client
}

func NewRatiosCapability(client *fmp.Client) *RatiosCapability {
	return &RatiosCapability{client: client}
}

func (c *RatiosCapability) Name() string { return NameRatios }
func (c *RatiosCapability) Description() string {
	return "Fetches key financial ratios (PE, EPS, ROE, Debt/Equity) for the trailing twelve months. Useful for evaluating valuation and profitability."
}
func (c *RatiosCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *RatiosCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	metrics, err := c.client.GetKeyMetrics(ctx, ticker)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("financial metrics", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// StatementsCapability fetches the income statement, balance sheet, and cash
// flow statement for the last four fiscal years.
type StatementsCapability struct {
	client *fmp.Client
}

func NewStatementsCapability(client *fmp.Client) *StatementsCapability {
	return &StatementsCapability{client: client}
}

func (c *StatementsCapability) Name() string { return NameStatements }
func (c *StatementsCapability) Description() string {
	return "Fetches the income statement, balance sheet, and cash flow statement for the last 4 years. Critical for valuation, margin analysis, and growth rates."
}
func (c *StatementsCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *StatementsCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	statements, err := c.client.GetStatements(ctx, ticker, 4)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("financial statements", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return statements, nil
}

// SegmentationCapability fetches the revenue breakdown by product and
// geography.
type SegmentationCapability struct {
	client *fmp.Client
}

func NewSegmentationCapability(client *fmp.Client) *SegmentationCapability {
	return &SegmentationCapability{client: client}
}

func (c *SegmentationCapability) Name() string { return NameSegmentation }
func (c *SegmentationCapability) Description() string {
	return "Fetches revenue breakdown by product and geography. Product segments show which division drives growth; geographic segments reveal regional exposure."
}
func (c *SegmentationCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *SegmentationCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	seg, err := c.client.GetRevenueSegmentation(ctx, ticker)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("revenue segmentation", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// EstimatesCapability fetches Wall Street consensus estimates for upcoming
// periods.
type EstimatesCapability struct {
	client *fmp.Client
}

func NewEstimatesCapability(client *fmp.Client) *EstimatesCapability {
	return &EstimatesCapability{client: client}
}

func (c *EstimatesCapability) Name() string { return NameEstimates }
func (c *EstimatesCapability) Description() string {
	return "Fetches Wall Street consensus estimates for revenue and EPS for upcoming years. Required for valuation context against future growth expectations."
}
func (c *EstimatesCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *EstimatesCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	estimates, err := c.client.GetAnalystEstimates(ctx, ticker, 5)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("analyst estimates", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return estimates, nil
}

// NewsCapability fetches the latest market news for the ticker.
type NewsCapability struct {
	client *fmp.Client
}

func NewNewsCapability(client *fmp.Client) *NewsCapability {
	return &NewsCapability{client: client}
}

func (c *NewsCapability) Name() string { return NameNews }
func (c *NewsCapability) Description() string {
	return "Fetches the latest market news related to the stock. Useful for sentiment analysis and identifying recent events."
}
func (c *NewsCapability) Schema() []byte { return []byte(TickerSchema) }

func (c *NewsCapability) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	ticker, err := parseTicker(args)
	if err != nil {
		return nil, err
	}
	news, err := c.client.GetNews(ctx, ticker, 5)
	if errors.Is(err, fmp.ErrNotFound) {
		return notFound("recent news", ticker), nil
	}
	if err != nil {
		return nil, err
	}
	return news, nil
}

var (
	_ ports.Capability = (*ProfileCapability)(nil)
	_ ports.Capability = (*RatiosCapability)(nil)
	_ ports.Capability = (*StatementsCapability)(nil)
	_ ports.Capability = (*SegmentationCapability)(nil)
	_ ports.Capability = (*EstimatesCapability)(nil)
	_ ports.Capability = (*NewsCapability)(nil)
)
