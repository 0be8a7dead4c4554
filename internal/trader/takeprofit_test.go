package trader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-webhook-bridge/internal/gate"
	"binance-webhook-bridge/pkg/types"
)

// TestAverageFillPrice tests the volume-weighted average across uneven fills
func TestAverageFillPrice(t *testing.T) {
	avg, qty, err := averageFillPrice([]types.Fill{
		{Price: 100, Qty: 1},
		{Price: 110, Qty: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 107.5, avg)
	assert.Equal(t, 4.0, qty)
}

// TestAverageFillPrice_NoFills tests that an empty fill list is an error
func TestAverageFillPrice_NoFills(t *testing.T) {
	_, _, err := averageFillPrice(nil)
	assert.Error(t, err)
}

// TestTakeProfitPrice tests the cent rounding of the markup, including
// products that land exactly on a half cent
func TestTakeProfitPrice(t *testing.T) {
	cases := []struct {
		avg, pct, want float64
	}{
		{100, 1.5, 101.5},
		{101, 1.5, 102.52}, // 101 * 1.015 = 102.515, a float ulp low if divided first
		{102.5, 2, 104.55},
		{99.99, 0.5, 100.49},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, takeProfitPrice(tc.avg, tc.pct), "avg=%v pct=%v", tc.avg, tc.pct)
	}
}

// TestBuy_PlacesTakeProfit tests that a filled buy at 100/102 with a 1.5%
// target yields a limit sell of 2.0 at 102.52
func TestBuy_PlacesTakeProfit(t *testing.T) {
	exch := &fakeExchange{
		balances: map[string]float64{"USDC": 1000},
		buyResult: &types.OrderResult{
			Symbol: "ETHUSDC",
			Side:   types.SideBuy,
			Type:   types.OrderTypeMarket,
			Status: "FILLED",
			Fills: []types.Fill{
				{Price: 100, Qty: 1},
				{Price: 102, Qty: 1},
			},
		},
	}
	tr := newTestTrader(exch, Config{TargetProfitPct: 1.5}, gate.Config{})

	outcome, err := tr.PlaceOrder(context.Background(), types.TradeSignal{Symbol: "ETHUSDC", Action: "BUY", SizePct: 25})
	require.NoError(t, err)
	require.NotNil(t, outcome.TakeProfit)

	require.Len(t, exch.limitCalls, 1)
	assert.Equal(t, "ETHUSDC", exch.limitCalls[0].symbol)
	assert.Equal(t, 2.0, exch.limitCalls[0].quantity)
	assert.Equal(t, 102.52, exch.limitCalls[0].price)
}

// TestBuy_NoTakeProfitWhenDisabled tests that a zero target skips the
// follow-up entirely
func TestBuy_NoTakeProfitWhenDisabled(t *testing.T) {
	exch := &fakeExchange{balances: map[string]float64{"USDC": 1000}}
	tr := newTestTrader(exch, Config{}, gate.Config{})

	outcome, err := tr.PlaceOrder(context.Background(), types.TradeSignal{Symbol: "ETHUSDC", Action: "BUY", SizePct: 25})
	require.NoError(t, err)
	assert.Nil(t, outcome.TakeProfit)
	assert.Empty(t, exch.limitCalls)
}

// TestBuy_TakeProfitFailureKeepsBuy tests that a failed follow-up still
// hands back the executed buy alongside the error
func TestBuy_TakeProfitFailureKeepsBuy(t *testing.T) {
	exch := &fakeExchange{
		balances: map[string]float64{"USDC": 1000},
		buyResult: &types.OrderResult{
			Symbol: "ETHUSDC",
			Side:   types.SideBuy,
			Status: "FILLED",
			// Expired with no fills: nothing to price the follow-up from.
		},
	}
	tr := newTestTrader(exch, Config{TargetProfitPct: 1.5}, gate.Config{})

	outcome, err := tr.PlaceOrder(context.Background(), types.TradeSignal{Symbol: "ETHUSDC", Action: "BUY", SizePct: 25})
	require.Error(t, err)

	var upstreamErr *UpstreamError
	assert.True(t, errors.As(err, &upstreamErr))
	require.NotNil(t, outcome)
	assert.NotNil(t, outcome.Order)
	assert.Nil(t, outcome.TakeProfit)
}
