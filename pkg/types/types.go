package types

import "encoding/json"

// Side is an order side using Binance wire values.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is an order type using Binance wire values.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// TradeSignal is one decoded webhook payload. It lives for a single request
// and is never persisted.
type TradeSignal struct {
	Symbol  string
	Action  string
	SizePct float64 // percentage of the quote balance to deploy, 0-100
}

// Balance is a single asset balance as reported by the exchange.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}

// Fill is one execution record of an order.
type Fill struct {
	Price           float64
	Qty             float64
	Commission      float64
	CommissionAsset string
}

// OrderResult is the decoded exchange response for a placed order. Raw keeps
// the verbatim response body so the webhook caller receives exactly what the
// exchange returned.
type OrderResult struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
	Status        string
	Side          Side
	Type          OrderType
	ExecutedQty   float64
	CumQuoteQty   float64
	Fills         []Fill
	Raw           json.RawMessage
}

// TradeOutcome bundles the primary order with the optional take-profit
// follow-up placed after a filled market buy.
type TradeOutcome struct {
	Order      *OrderResult
	TakeProfit *OrderResult
}
