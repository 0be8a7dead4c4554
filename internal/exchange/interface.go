package exchange

import (
	"context"

	"binance-webhook-bridge/pkg/types"
)

// Exchange is the trading surface the order dispatcher depends on. Balance
// reads are always fresh; nothing is cached between calls.
type Exchange interface {
	GetName() string

	// FreeBalance returns the free amount of an asset. An asset the account
	// simply does not hold is (0, nil); lookup failures are errors.
	FreeBalance(ctx context.Context, asset string) (float64, error)

	// PlaceMarketBuyQuote submits a MARKET buy spending quoteAmount of the
	// quote asset (quote-order-quantity semantics).
	PlaceMarketBuyQuote(ctx context.Context, symbol string, quoteAmount float64) (*types.OrderResult, error)

	// PlaceMarketSell submits a MARKET sell of quantity base units.
	PlaceMarketSell(ctx context.Context, symbol string, quantity float64) (*types.OrderResult, error)

	// PlaceLimitSell submits a good-till-cancelled LIMIT sell.
	PlaceLimitSell(ctx context.Context, symbol string, quantity, price float64) (*types.OrderResult, error)
}
