package capabilities

import (
	"encoding/json"
	"fmt"
)

// TickerSchema is the shared argument schema: every capability tolerates
// being called with only the ticker symbol.
const TickerSchema = `{
  "type": "object",
  "properties": {
    "ticker": {
      "type": "string",
      "description": "The stock ticker symbol (e.g., AAPL, TSLA, NVDA)."
    }
  },
  "required": ["ticker"]
}`

// parseTicker extracts the ticker argument.
func parseTicker(args json.RawMessage) (string, error) {
	var params struct {
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if params.Ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	return params.Ticker, nil
}

// notFound is the typed empty-data payload: upstream sources returning no
// rows are data, not errors.
func notFound(what, ticker string) map[string]string {
	return map[string]string{"error": fmt.Sprintf("%s not found for ticker: %s", what, ticker)}
}
