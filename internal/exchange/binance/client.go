package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// MainnetURL is the Binance spot REST endpoint.
	MainnetURL = "https://api.binance.com"
	// TestnetURL is the spot testnet endpoint.
	TestnetURL = "https://testnet.binance.vision"
)

// Client is a minimal signed REST client for the Binance spot API. It does
// not retry: a failed call surfaces immediately to the caller.
type Client struct {
	apiKey  string
	secret  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// Config holds the configuration for the Binance client.
type Config struct {
	APIKey  string
	Secret  string
	BaseURL string // overrides Testnet/mainnet selection when set
	Testnet bool
}

// NewClient creates a new Binance client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Testnet {
			baseURL = TestnetURL
		} else {
			baseURL = MainnetURL
		}
	}

	return &Client{
		apiKey:  cfg.APIKey,
		secret:  cfg.Secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) GetName() string {
	return "binance"
}

// signedQuery appends the timestamp and then the signature computed over
// everything that precedes it, preserving parameter order end to end.
func (c *Client) signedQuery(params Params) string {
	params = params.Add("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	signature := Sign(params, c.secret)
	return params.Encode() + "&signature=" + signature
}

// doSigned performs an authenticated request and returns the raw response
// body. Non-2xx responses are decoded into *APIError.
func (c *Client) doSigned(ctx context.Context, method, path string, params Params) ([]byte, error) {
	url := c.baseURL + path + "?" + c.signedQuery(params)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}
