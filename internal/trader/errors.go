package trader

import "fmt"

// ValidationError reports a malformed trade signal. It is the caller's
// mistake and maps to HTTP 400 at the boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PolicyError reports an order refused by the safety gate or the sizing
// rules. No order call was made.
type PolicyError struct {
	Rule   string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("order rejected (%s): %s", e.Rule, e.Reason)
}

// Sizing rule identifiers that live outside the gate.
const (
	RuleMinNotional = "min_notional"
	RuleNoPosition  = "no_position"
)

// UpstreamError wraps a failure talking to the exchange: transport faults,
// authentication problems, or responses the bridge cannot make sense of.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
