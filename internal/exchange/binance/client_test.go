package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client := NewClient(Config{
		APIKey:  "test-key",
		Secret:  "test-secret",
		BaseURL: ts.URL,
	})
	client.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return client, ts
}

// TestDoSigned_AttachesAPIKeyHeader tests that requests carry the API key
// header
func TestDoSigned_AttachesAPIKeyHeader(t *testing.T) {
	var gotHeader string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-MBX-APIKEY")
		w.Write([]byte(`{}`))
	})

	_, err := client.doSigned(context.Background(), http.MethodGet, "/api/v3/account", Params{})
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotHeader)
}

// TestDoSigned_SignatureCoversTransmittedQuery tests that the signature is
// valid for exactly the query string sent, minus the signature itself
func TestDoSigned_SignatureCoversTransmittedQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	})

	params := Params{}.Add("symbol", "ETHUSDC").Add("side", "BUY")
	_, err := client.doSigned(context.Background(), http.MethodPost, "/api/v3/order", params)
	require.NoError(t, err)

	idx := strings.LastIndex(gotQuery, "&signature=")
	require.Greater(t, idx, 0, "query %q should end with a signature", gotQuery)
	signed, signature := gotQuery[:idx], gotQuery[idx+len("&signature="):]

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(signed))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), signature)
	assert.True(t, strings.HasSuffix(signed, "&timestamp=1700000000000"))
}

// TestDoSigned_ParsesAPIError tests that a non-2xx response becomes a typed
// APIError
func TestDoSigned_ParsesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	})

	_, err := client.doSigned(context.Background(), http.MethodPost, "/api/v3/order", Params{})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, ErrCodeInsufficientBalance, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.True(t, IsInsufficientBalanceError(err))
}

// TestDoSigned_NonJSONErrorBody tests that an unparseable error body is
// still surfaced
func TestDoSigned_NonJSONErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := client.doSigned(context.Background(), http.MethodGet, "/api/v3/account", Params{})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Contains(t, apiErr.Message, "upstream unavailable")
}

// TestNewClient_BaseURLSelection tests mainnet/testnet/override selection
func TestNewClient_BaseURLSelection(t *testing.T) {
	assert.Equal(t, MainnetURL, NewClient(Config{}).baseURL)
	assert.Equal(t, TestnetURL, NewClient(Config{Testnet: true}).baseURL)
	assert.Equal(t, "http://localhost:9999", NewClient(Config{BaseURL: "http://localhost:9999/"}).baseURL)
}
