package toast_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/toast"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("broadcasts toast event to the user", func(t *testing.T) {
		broadcaster := mocks.NewMockEventBroadcaster()
		broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			tst, ok := e.Payload.(domain.Toast)
			return ok &&
				e.Type == domain.EventToast &&
				e.UserID == "u1" &&
				tst == domain.SuccessToast(domain.MsgStatusUpdated)
		})).Return(nil).Once()

		var buf bytes.Buffer
		n := toast.NewNotifier(broadcaster, slog.New(slog.NewTextHandler(&buf, nil)))
		n.Notify(ctx, "u1", domain.SuccessToast(domain.MsgStatusUpdated))

		broadcaster.AssertExpectations(t)
		assert.Contains(t, buf.String(), domain.MsgStatusUpdated)
	})

	t.Run("error toasts are logged as warnings", func(t *testing.T) {
		broadcaster := mocks.NewMockEventBroadcaster()
		broadcaster.On("Broadcast", mock.Anything).Return(errors.New("hub closed")).Once()

		var buf bytes.Buffer
		n := toast.NewNotifier(broadcaster, slog.New(slog.NewTextHandler(&buf, nil)))
		n.Notify(ctx, "u1", domain.ErrorToast(domain.MsgStatusFailed))

		out := buf.String()
		assert.Contains(t, out, "level=WARN")
		assert.Contains(t, out, "failed to deliver toast")
	})
}
