package gate

import "fmt"

// Rule identifies an individual safety-gate policy.
type Rule string

const (
	RuleDrawdownCap      Rule = "drawdown_cap"
	RuleProfitCap        Rule = "profit_cap"
	RulePositionConflict Rule = "position_conflict"
)

// RuleError is a gate rejection. It is a policy decision, not a fault.
type RuleError struct {
	Rule    Rule
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("gate rejected order (%s): %s", e.Rule, e.Message)
}

// Rules toggles individual gate checks so deployments can enable or disable
// each policy independently.
type Rules struct {
	DrawdownCap      bool
	ProfitCap        bool
	PositionConflict bool
}

// Config holds the gate thresholds. A zero cap disables its rule even when
// the toggle is on: with a zero threshold the very first baseline
// observation (changePct 0) would trip the cap and halt every order.
type Config struct {
	MaxDrawdownPct float64
	MaxProfitPct   float64
	DustThreshold  float64
	Rules          Rules
}

// Gate evaluates session-level PnL caps and position-conflict policy before
// an order is allowed through. It is pure policy over balances handed to it;
// it performs no I/O of its own.
type Gate struct {
	cfg     Config
	session *Session
}

// New creates a gate bound to a session.
func New(cfg Config, session *Session) *Gate {
	return &Gate{cfg: cfg, session: session}
}

// Session returns the session this gate evaluates against.
func (g *Gate) Session() *Session {
	return g.session
}

// ChecksPosition reports whether the position-conflict rule is enabled.
func (g *Gate) ChecksPosition() bool {
	return g.cfg.Rules.PositionConflict
}

// CheckCaps records the baseline on first sight of a positive quote balance
// and then enforces the session drawdown/profit caps. A session without a
// baseline skips the checks rather than faulting.
func (g *Gate) CheckCaps(quoteBalance float64) error {
	baseline, active := g.session.Observe(quoteBalance)
	if !active || baseline == 0 {
		return nil
	}

	changePct := (quoteBalance - baseline) / baseline * 100

	if g.cfg.Rules.DrawdownCap && g.cfg.MaxDrawdownPct > 0 && changePct <= -g.cfg.MaxDrawdownPct {
		return &RuleError{
			Rule:    RuleDrawdownCap,
			Message: fmt.Sprintf("session down %.2f%% from baseline %.2f, cap is %.2f%%", -changePct, baseline, g.cfg.MaxDrawdownPct),
		}
	}
	if g.cfg.Rules.ProfitCap && g.cfg.MaxProfitPct > 0 && changePct >= g.cfg.MaxProfitPct {
		return &RuleError{
			Rule:    RuleProfitCap,
			Message: fmt.Sprintf("session up %.2f%% from baseline %.2f, cap is %.2f%%", changePct, baseline, g.cfg.MaxProfitPct),
		}
	}
	return nil
}

// CheckPosition rejects a buy when the base asset is already held above the
// dust threshold, preventing pyramiding into an existing position.
func (g *Gate) CheckPosition(baseAsset string, baseBalance float64) error {
	if !g.cfg.Rules.PositionConflict {
		return nil
	}
	if baseBalance > g.cfg.DustThreshold {
		return &RuleError{
			Rule:    RulePositionConflict,
			Message: fmt.Sprintf("already holding %.6f %s", baseBalance, baseAsset),
		}
	}
	return nil
}
