package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// FreeBalance returns the free amount of an asset from GET /api/v3/account.
// An asset missing from the response is a zero balance, not an error; every
// other failure (transport, auth, malformed body) propagates so that callers
// can tell "no funds" apart from "lookup failed".
func (c *Client) FreeBalance(ctx context.Context, asset string) (float64, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/api/v3/account", Params{})
	if err != nil {
		return 0, fmt.Errorf("failed to get account balances: %w", err)
	}

	var account struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return 0, fmt.Errorf("failed to decode account response: %w", err)
	}

	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse free balance %q for %s: %w", b.Free, asset, err)
		}
		return free, nil
	}
	return 0, nil
}
