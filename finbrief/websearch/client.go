package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Tavily search API root.
const DefaultBaseURL = "https://api.tavily.com"

// Config configures the search client.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

// Client is a Tavily web search client tuned for finance queries.
type Client struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewClient builds a search client with defaults applied.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, log: log}
}

type searchRequest struct {
	Query      string `json:"query"`
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Search runs a finance-topic query and renders the hits as markdown source
// sections. An empty result set returns ("", nil); the caller decides on the
// not-found wording.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(searchRequest{Query: query, Topic: "finance", MaxResults: c.cfg.MaxResults})
	if err != nil {
		return "", fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return "", nil
	}

	sections := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		sections = append(sections, fmt.Sprintf("**Source:** %s\n%s", r.URL, r.Content))
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}
