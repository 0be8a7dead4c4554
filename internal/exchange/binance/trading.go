package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"binance-webhook-bridge/pkg/types"
)

// PlaceMarketBuyQuote submits a MARKET buy spending quoteAmount of the quote
// asset. The exchange decides how much base asset that buys at market price.
func (c *Client) PlaceMarketBuyQuote(ctx context.Context, symbol string, quoteAmount float64) (*types.OrderResult, error) {
	params := Params{}.
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", string(types.SideBuy)).
		Add("type", string(types.OrderTypeMarket)).
		Add("quoteOrderQty", formatAmount(quoteAmount, 2)).
		Add("newClientOrderId", newClientOrderID())
	return c.placeOrder(ctx, params, types.SideBuy, types.OrderTypeMarket)
}

// PlaceMarketSell submits a MARKET sell of quantity base units.
func (c *Client) PlaceMarketSell(ctx context.Context, symbol string, quantity float64) (*types.OrderResult, error) {
	params := Params{}.
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", string(types.SideSell)).
		Add("type", string(types.OrderTypeMarket)).
		Add("quantity", formatAmount(quantity, 6)).
		Add("newClientOrderId", newClientOrderID())
	return c.placeOrder(ctx, params, types.SideSell, types.OrderTypeMarket)
}

// PlaceLimitSell submits a good-till-cancelled LIMIT sell.
func (c *Client) PlaceLimitSell(ctx context.Context, symbol string, quantity, price float64) (*types.OrderResult, error) {
	params := Params{}.
		Add("symbol", strings.ToUpper(symbol)).
		Add("side", string(types.SideSell)).
		Add("type", string(types.OrderTypeLimit)).
		Add("quantity", formatAmount(quantity, 6)).
		Add("price", formatAmount(price, 2)).
		Add("timeInForce", "GTC").
		Add("newClientOrderId", newClientOrderID())
	return c.placeOrder(ctx, params, types.SideSell, types.OrderTypeLimit)
}

func (c *Client) placeOrder(ctx context.Context, params Params, side types.Side, orderType types.OrderType) (*types.OrderResult, error) {
	body, err := c.doSigned(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	result, err := parseOrderResponse(body)
	if err != nil {
		return nil, err
	}
	result.Side = side
	result.Type = orderType
	return result, nil
}

// parseOrderResponse decodes the exchange's order response while keeping the
// verbatim body for passthrough to the webhook caller. Numeric fields arrive
// as strings on the wire.
func parseOrderResponse(body []byte) (*types.OrderResult, error) {
	var ord struct {
		Symbol        string `json:"symbol"`
		OrderID       int64  `json:"orderId"`
		ClientOrderID string `json:"clientOrderId"`
		Status        string `json:"status"`
		ExecutedQty   string `json:"executedQty"`
		CumQuoteQty   string `json:"cummulativeQuoteQty"`
		Fills         []struct {
			Price           string `json:"price"`
			Qty             string `json:"qty"`
			Commission      string `json:"commission"`
			CommissionAsset string `json:"commissionAsset"`
		} `json:"fills"`
	}
	if err := json.Unmarshal(body, &ord); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	result := &types.OrderResult{
		Symbol:        ord.Symbol,
		OrderID:       ord.OrderID,
		ClientOrderID: ord.ClientOrderID,
		Status:        ord.Status,
		ExecutedQty:   parseFloat(ord.ExecutedQty),
		CumQuoteQty:   parseFloat(ord.CumQuoteQty),
		Raw:           json.RawMessage(body),
	}
	for _, f := range ord.Fills {
		result.Fills = append(result.Fills, types.Fill{
			Price:           parseFloat(f.Price),
			Qty:             parseFloat(f.Qty),
			Commission:      parseFloat(f.Commission),
			CommissionAsset: f.CommissionAsset,
		})
	}
	return result, nil
}

// newClientOrderID returns a fresh client order id. Binance caps the field
// at 36 characters, exactly the length of a canonical UUID.
func newClientOrderID() string {
	return uuid.NewString()
}

func formatAmount(x float64, decimals int) string {
	return strconv.FormatFloat(x, 'f', decimals, 64)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
