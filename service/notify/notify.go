package notify

import (
	"context"

	"go.uber.org/zap"

	"MChat/logger"
)

// Sender delivers an out-of-band notification (push/email) to a user who
// has no live session. Delivery is fire-and-forget; the caller never
// blocks on it.
type Sender interface {
	NotifyNewMessage(ctx context.Context, userID, chatID, preview string)
}

// LogSender is the default implementation: it only records the intent.
// Swap in a real push provider behind the same interface.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) NotifyNewMessage(_ context.Context, userID, chatID, preview string) {
	logger.Info("offline notification",
		zap.String("user", userID),
		zap.String("chat", chatID),
		zap.String("preview", preview),
	)
}
