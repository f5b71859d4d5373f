package toast

import (
	"context"
	"log/slog"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// Notifier is a secondary adapter that delivers toasts over the realtime hub.
// It implements the ports.Notifier interface.
type Notifier struct {
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
}

// NewNotifier creates a notifier that pushes toasts through the broadcaster.
func NewNotifier(broadcaster ports.EventBroadcaster, logger *slog.Logger) ports.Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		logger:      logger.With("component", "toast_notifier"),
	}
}

// Notify logs the toast and sends it to the user's live connections. Users
// without a connection simply miss it.
func (n *Notifier) Notify(ctx context.Context, userID string, toast domain.Toast) {
	level := slog.LevelInfo
	if toast.Level == domain.ToastError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "toast",
		"user_id", userID,
		"level", toast.Level,
		"message", toast.Message,
	)

	if err := n.broadcaster.Broadcast(domain.NewEvent(userID, domain.EventToast, "", toast)); err != nil {
		n.logger.ErrorContext(ctx, "failed to deliver toast",
			"user_id", userID,
			"error", err,
		)
	}
}
