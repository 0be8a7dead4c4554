package trader

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"binance-webhook-bridge/internal/exchange"
	"binance-webhook-bridge/internal/gate"
	"binance-webhook-bridge/internal/monitoring"
	"binance-webhook-bridge/pkg/types"
)

// Config holds the sizing parameters of the dispatcher.
type Config struct {
	// QuoteAsset is the balance-bearing asset every traded pair is quoted
	// in, e.g. "USDC". Symbols that do not end in it are rejected.
	QuoteAsset string
	// MinNotional is the smallest allowed buy, in quote units.
	MinNotional float64
	// TargetProfitPct, when positive, places a LIMIT SELL follow-up at this
	// markup over the average fill price after every market buy.
	TargetProfitPct float64
}

// Trader sizes, gates and dispatches orders. One instance serves all
// webhook requests; per-request state lives on the stack.
type Trader struct {
	exchange exchange.Exchange
	gate     *gate.Gate
	cfg      Config
	log      *logrus.Logger
}

// New creates a trader.
func New(exch exchange.Exchange, g *gate.Gate, cfg Config, log *logrus.Logger) *Trader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Trader{
		exchange: exch,
		gate:     g,
		cfg:      cfg,
		log:      log,
	}
}

// PlaceOrder validates the signal, consults the safety gate, and forwards a
// sized order to the exchange. Gate rejections short-circuit before any
// order placement call; the balance reads the gate needs still happen.
func (t *Trader) PlaceOrder(ctx context.Context, signal types.TradeSignal) (*types.TradeOutcome, error) {
	symbol := strings.ToUpper(strings.TrimSpace(signal.Symbol))
	base, err := t.baseAsset(symbol)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(signal.Action) {
	case string(types.SideBuy):
		return t.buy(ctx, symbol, base, signal.SizePct)
	case string(types.SideSell):
		return t.sell(ctx, symbol, base)
	default:
		return nil, &ValidationError{Field: "action", Reason: fmt.Sprintf("%q is not BUY or SELL", signal.Action)}
	}
}

func (t *Trader) buy(ctx context.Context, symbol, base string, sizePct float64) (*types.TradeOutcome, error) {
	quoteBalance, err := t.exchange.FreeBalance(ctx, t.cfg.QuoteAsset)
	if err != nil {
		return nil, &UpstreamError{Op: "quote balance lookup", Err: err}
	}
	if err := t.checkGate(ctx, quoteBalance, base, true); err != nil {
		return nil, err
	}

	tradeAmount := roundTo(quoteBalance*sizePct/100, 2)
	if tradeAmount < t.cfg.MinNotional {
		return nil, &PolicyError{
			Rule:   RuleMinNotional,
			Reason: fmt.Sprintf("trade amount %.2f %s is below the %.2f minimum", tradeAmount, t.cfg.QuoteAsset, t.cfg.MinNotional),
		}
	}

	t.log.WithFields(logrus.Fields{
		"symbol": symbol,
		"side":   types.SideBuy,
		"amount": tradeAmount,
	}).Info("placing market buy")

	order, err := t.exchange.PlaceMarketBuyQuote(ctx, symbol, tradeAmount)
	if err != nil {
		return nil, &UpstreamError{Op: "market buy", Err: err}
	}

	outcome := &types.TradeOutcome{Order: order}
	if t.cfg.TargetProfitPct > 0 {
		takeProfit, err := t.placeTakeProfit(ctx, symbol, order)
		if err != nil {
			// The buy already went through; hand it back alongside the error
			// so the boundary can report both.
			return outcome, err
		}
		outcome.TakeProfit = takeProfit
	}
	return outcome, nil
}

func (t *Trader) sell(ctx context.Context, symbol, base string) (*types.TradeOutcome, error) {
	quoteBalance, err := t.exchange.FreeBalance(ctx, t.cfg.QuoteAsset)
	if err != nil {
		return nil, &UpstreamError{Op: "quote balance lookup", Err: err}
	}
	if err := t.checkGate(ctx, quoteBalance, base, false); err != nil {
		return nil, err
	}

	baseBalance, err := t.exchange.FreeBalance(ctx, base)
	if err != nil {
		return nil, &UpstreamError{Op: "base balance lookup", Err: err}
	}
	if baseBalance <= 0 {
		return nil, &PolicyError{
			Rule:   RuleNoPosition,
			Reason: fmt.Sprintf("no %s balance to sell", base),
		}
	}

	quantity := roundTo(baseBalance, 6)
	t.log.WithFields(logrus.Fields{
		"symbol":   symbol,
		"side":     types.SideSell,
		"quantity": quantity,
	}).Info("placing market sell")

	order, err := t.exchange.PlaceMarketSell(ctx, symbol, quantity)
	if err != nil {
		return nil, &UpstreamError{Op: "market sell", Err: err}
	}
	return &types.TradeOutcome{Order: order}, nil
}

// checkGate runs the session caps and, for buys, the position-conflict rule.
func (t *Trader) checkGate(ctx context.Context, quoteBalance float64, base string, buying bool) error {
	monitoring.UpdateQuoteBalance(t.cfg.QuoteAsset, quoteBalance)
	err := t.gate.CheckCaps(quoteBalance)
	if baseline, ok := t.gate.Session().Baseline(); ok {
		monitoring.UpdateSessionBaseline(baseline)
	}
	if err != nil {
		return asPolicyError(err)
	}
	if buying && t.gate.ChecksPosition() {
		baseBalance, err := t.exchange.FreeBalance(ctx, base)
		if err != nil {
			return &UpstreamError{Op: "base balance lookup", Err: err}
		}
		if err := t.gate.CheckPosition(base, baseBalance); err != nil {
			return asPolicyError(err)
		}
	}
	return nil
}

// symbolPattern is the exchange symbol alphabet. Anything outside it never
// reaches the signed query string.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// baseAsset derives the base asset from the symbol using the configured
// quote asset rather than guessing at suffixes.
func (t *Trader) baseAsset(symbol string) (string, error) {
	if symbol == "" {
		return "", &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !symbolPattern.MatchString(symbol) {
		return "", &ValidationError{Field: "symbol", Reason: "must contain only A-Z and 0-9"}
	}
	base := strings.TrimSuffix(symbol, t.cfg.QuoteAsset)
	if base == symbol || base == "" {
		return "", &ValidationError{Field: "symbol", Reason: fmt.Sprintf("%s is not a %s pair", symbol, t.cfg.QuoteAsset)}
	}
	return base, nil
}

func asPolicyError(err error) error {
	if ruleErr, ok := err.(*gate.RuleError); ok {
		return &PolicyError{Rule: string(ruleErr.Rule), Reason: ruleErr.Message}
	}
	return err
}

func roundTo(x float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(x*pow) / pow
}
