package notifications

import "context"

// Level classifies an alert for formatting and filtering.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Notifier delivers out-of-band alerts about bridge activity.
type Notifier interface {
	// SendAlert sends an alert with the specified level and message.
	SendAlert(ctx context.Context, level Level, message string) error
}

// Noop is a Notifier that discards every alert. Used when no notification
// channel is configured.
type Noop struct{}

func (Noop) SendAlert(ctx context.Context, level Level, message string) error { return nil }
