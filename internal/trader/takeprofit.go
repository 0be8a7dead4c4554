package trader

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"binance-webhook-bridge/pkg/types"
)

// averageFillPrice returns the volume-weighted average price and total
// quantity across the fills of an executed order.
func averageFillPrice(fills []types.Fill) (avg, totalQty float64, err error) {
	var totalCost float64
	for _, f := range fills {
		totalCost += f.Price * f.Qty
		totalQty += f.Qty
	}
	if totalQty == 0 {
		return 0, 0, errors.New("order response contains no fills")
	}
	return totalCost / totalQty, totalQty, nil
}

// takeProfitPrice marks avg up by pct percent, rounded to cents. Rounding
// happens before the division by 100: avg*(1+pct/100) can sit one float ulp
// below the exact product and round a cent low (101 at 1.5% must be 102.52,
// not 102.51).
func takeProfitPrice(avg, pct float64) float64 {
	return math.Round(avg*(100+pct)) / 100
}

// placeTakeProfit places a GTC LIMIT SELL of the bought quantity at the
// configured markup over the volume-weighted average fill price. A buy
// response without fill data (rejected or still open) yields an error and
// no follow-up order.
func (t *Trader) placeTakeProfit(ctx context.Context, symbol string, buy *types.OrderResult) (*types.OrderResult, error) {
	avg, quantity, err := averageFillPrice(buy.Fills)
	if err != nil {
		return nil, &UpstreamError{Op: "take-profit", Err: err}
	}

	targetPrice := takeProfitPrice(avg, t.cfg.TargetProfitPct)
	quantity = roundTo(quantity, 6)

	t.log.WithFields(logrus.Fields{
		"symbol":   symbol,
		"avgPrice": avg,
		"target":   targetPrice,
		"quantity": quantity,
	}).Info("placing take-profit limit sell")

	order, err := t.exchange.PlaceLimitSell(ctx, symbol, quantity, targetPrice)
	if err != nil {
		return nil, &UpstreamError{Op: "take-profit limit sell", Err: err}
	}
	return order, nil
}
