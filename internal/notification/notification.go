package notification

import (
	"context"
	"log/slog"
)

const (
	// KindVerifyVoidFailed reports a verification whose authorization could
	// not be voided and still holds funds on the card.
	KindVerifyVoidFailed = "verify_void_failed"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Warn("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
