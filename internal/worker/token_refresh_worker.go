package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/eedition-gateway/internal/events"
	"github.com/spec-kit/eedition-gateway/internal/token"
)

// StartTokenRefreshWorker subscribes the login-event handler that lazily
// refreshes a reader's access token, mirroring the host's login hook.
func StartTokenRefreshWorker(dispatcher events.Dispatcher, tokens *token.Manager, logger *zap.Logger) {
	if dispatcher == nil || tokens == nil {
		return
	}

	dispatcher.Subscribe(events.EventReaderLoggedIn, func(ctx context.Context, event events.Event) error {
		if _, err := tokens.GetOrRefresh(ctx, event.ReaderID); err != nil {
			logger.Warn("token refresh on login failed",
				zap.String("reader_id", event.ReaderID),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
}
