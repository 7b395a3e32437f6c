package capabilities

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbrief/finbrief/finbrief/fmp"
	"github.com/finbrief/finbrief/finbrief/websearch"
)

func newFMPClient(t *testing.T, handler http.HandlerFunc) *fmp.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return fmp.NewClient(fmp.Config{APIKey: "k", BaseURL: srv.URL}, zerolog.Nop())
}

func newSearchClient(t *testing.T, handler http.HandlerFunc) *websearch.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return websearch.NewClient(websearch.Config{APIKey: "k", BaseURL: srv.URL}, zerolog.Nop())
}

func TestProfileCapability(t *testing.T) {
	client := newFMPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"symbol":"AAPL","companyName":"Apple Inc.","sector":"Technology"}]`)
	})
	c := NewProfileCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"AAPL"}`))
	require.NoError(t, err)
	profile, ok := out.(*fmp.Profile)
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", profile.CompanyName)
}

func TestProfileCapability_NotFoundIsDataNotError(t *testing.T) {
	client := newFMPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	c := NewProfileCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"NOPE"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"error": "company profile not found for ticker: NOPE"}, out)
}

func TestStatementsCapability_NotFound(t *testing.T) {
	client := newFMPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	c := NewStatementsCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"NOPE"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"error": "financial statements not found for ticker: NOPE"}, out)
}

func TestCapabilities_MissingTickerRejected(t *testing.T) {
	client := newFMPClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("capability must not call upstream without a ticker")
	})
	c := NewRatiosCapability(client)

	_, err := c.Invoke(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker is required")
}

func TestEarningsSummaryCapability(t *testing.T) {
	client := newSearchClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[{"url":"https://example.com","content":"Guidance raised."}]}`)
	})
	c := NewEarningsSummaryCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"AAPL"}`))
	require.NoError(t, err)
	digest, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, digest, "Guidance raised.")
}

func TestEarningsSummaryCapability_EmptyDigest(t *testing.T) {
	client := newSearchClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})
	c := NewEarningsSummaryCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"AAPL"}`))
	require.NoError(t, err)
	assert.Equal(t, "No earnings summary found.", out)
}

func TestOwnershipCapability_EmptyDigest(t *testing.T) {
	client := newSearchClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})
	c := NewOwnershipCapability(client)

	out, err := c.Invoke(context.Background(), []byte(`{"ticker":"AAPL"}`))
	require.NoError(t, err)
	assert.Equal(t, "No ownership data found.", out)
}

func TestDefaultRegistryWiring(t *testing.T) {
	fmpClient := newFMPClient(t, func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `[]`) })
	searchClient := newSearchClient(t, func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"results":[]}`) })

	r, err := NewRegistry(
		NewProfileCapability(fmpClient),
		NewRatiosCapability(fmpClient),
		NewStatementsCapability(fmpClient),
		NewSegmentationCapability(fmpClient),
		NewEstimatesCapability(fmpClient),
		NewNewsCapability(fmpClient),
		NewEarningsSummaryCapability(searchClient),
		NewOwnershipCapability(searchClient),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		NameProfile, NameRatios, NameStatements, NameSegmentation,
		NameEstimates, NameNews, NameEarningsSummary, NameOwnership,
	}, r.Names())
}
