package email

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// MockSMTPNotifier logs notifications instead of sending them. Recipients
// are responsible names as recorded on tickets.
type MockSMTPNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*MockSMTPNotifier)(nil)

func NewMockSMTPNotifier(logger *slog.Logger) *MockSMTPNotifier {
	return &MockSMTPNotifier{
		logger: logger.With("component", "email_notifier"),
	}
}

// Notify never fails the caller; a notification without a recipient is
// dropped with a warning.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	recipient := strings.TrimSpace(params.Recipient)
	if recipient == "" {
		n.logger.WarnContext(ctx, "notification without recipient dropped", "subject", params.Subject)
		return
	}

	n.logger.InfoContext(ctx, "mock email sent",
		"to", recipient,
		"subject", params.Subject,
		"lines", strings.Count(params.Message, "\n"),
	)
	n.logger.DebugContext(ctx, "mock email body", "to", recipient, "body", params.Message)
}
