package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// DefaultBaseURL is the FMP stable API root.
const DefaultBaseURL = "https://financialmodelingprep.com/stable"

// ErrNotFound reports that the upstream source returned no data for the
// ticker. Callers map it to a typed not-found payload rather than a failure.
var ErrNotFound = errors.New("fmp: no data for ticker")

// Config configures the FMP client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a Financial Modeling Prep API client. It includes fallback logic
// for endpoints restricted on legacy account tiers.
type Client struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewClient builds a client, applying base URL and timeout defaults.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, log: log}
}

// get executes a GET with the api key injected and decodes the JSON body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", endpoint, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint %s returned HTTP %d: %s", endpoint, resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// GetProfile fetches the company profile. When the profile endpoint fails or
// comes back empty (legacy account restriction) it falls back to the quote
// endpoint and maps the reduced record onto a Profile.
func (c *Client) GetProfile(ctx context.Context, ticker string) (*Profile, error) {
	var profiles []Profile
	err := c.get(ctx, "profile", url.Values{"symbol": {ticker}}, &profiles)
	if err == nil && len(profiles) > 0 {
		return &profiles[0], nil
	}
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("profile endpoint failed, falling back to quote")
	}

	var quotes []quote
	if err := c.get(ctx, "quote", url.Values{"symbol": {ticker}}, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNotFound
	}
	q := quotes[0]
	return &Profile{
		Symbol:      q.Symbol,
		CompanyName: q.Name,
		Price:       q.Price,
		MarketCap:   q.MarketCap,
		Description: "Description unavailable (source: quote endpoint)",
		Sector:      "N/A",
		Industry:    "N/A",
		CEO:         "N/A",
		Website:     "N/A",
	}, nil
}

// GetKeyMetrics fetches trailing-twelve-month ratios.
func (c *Client) GetKeyMetrics(ctx context.Context, ticker string) (*KeyMetrics, error) {
	var metrics []KeyMetrics
	if err := c.get(ctx, "ratios-ttm", url.Values{"symbol": {ticker}}, &metrics); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, ErrNotFound
	}
	return &metrics[0], nil
}

// GetStatements fetches income, balance-sheet, and cash-flow statements for
// the last `limit` fiscal years. The three calls run concurrently.
func (c *Client) GetStatements(ctx context.Context, ticker string, limit int) (*Statements, error) {
	if limit <= 0 {
		limit = 4
	}
	params := func() url.Values { return url.Values{"limit": {fmt.Sprint(limit)}} }

	var (
		out  Statements
		errs [3]error
		wg   conc.WaitGroup
	)
	wg.Go(func() { errs[0] = c.get(ctx, "income-statement/"+ticker, params(), &out.IncomeStatement) })
	wg.Go(func() { errs[1] = c.get(ctx, "balance-sheet-statement/"+ticker, params(), &out.BalanceSheet) })
	wg.Go(func() { errs[2] = c.get(ctx, "cash-flow-statement/"+ticker, params(), &out.CashFlow) })
	wg.Wait()

	if err := errors.Join(errs[0], errs[1], errs[2]); err != nil {
		return nil, fmt.Errorf("fetch statements: %w", err)
	}
	if len(out.IncomeStatement) == 0 && len(out.BalanceSheet) == 0 && len(out.CashFlow) == 0 {
		return nil, ErrNotFound
	}
	return &out, nil
}

// GetRevenueSegmentation fetches the product and geographic revenue
// breakdowns concurrently.
func (c *Client) GetRevenueSegmentation(ctx context.Context, ticker string) (*RevenueSegmentation, error) {
	var (
		out  RevenueSegmentation
		errs [2]error
		wg   conc.WaitGroup
	)
	wg.Go(func() {
		errs[0] = c.get(ctx, "revenue-product-segmentation", url.Values{"symbol": {ticker}}, &out.ProductSegments)
	})
	wg.Go(func() {
		errs[1] = c.get(ctx, "revenue-geographic-segmentation", url.Values{"symbol": {ticker}}, &out.GeographicSegments)
	})
	wg.Wait()

	if err := errors.Join(errs[0], errs[1]); err != nil {
		return nil, fmt.Errorf("fetch revenue segmentation: %w", err)
	}
	if len(out.ProductSegments) == 0 && len(out.GeographicSegments) == 0 {
		return nil, ErrNotFound
	}
	return &out, nil
}

// GetAnalystEstimates fetches consensus estimates for the next `limit`
// annual periods.
func (c *Client) GetAnalystEstimates(ctx context.Context, ticker string, limit int) ([]AnalystEstimate, error) {
	if limit <= 0 {
		limit = 5
	}
	var estimates []AnalystEstimate
	params := url.Values{"symbol": {ticker}, "period": {"annual"}, "limit": {fmt.Sprint(limit)}}
	if err := c.get(ctx, "analyst-estimates", params, &estimates); err != nil {
		return nil, err
	}
	if len(estimates) == 0 {
		return nil, ErrNotFound
	}
	return estimates, nil
}

// GetNews fetches the latest market news for the ticker.
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}
	var news []NewsItem
	params := url.Values{"symbols": {ticker}, "limit": {fmt.Sprint(limit)}}
	if err := c.get(ctx, "news/stock", params, &news); err != nil {
		return nil, err
	}
	if len(news) == 0 {
		return nil, ErrNotFound
	}
	return news, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
