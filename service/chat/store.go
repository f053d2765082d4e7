package chat

import (
	"context"
	"time"

	chatmodel "MChat/module/chat/model"
	usermodel "MChat/module/user/model"
)

// Store is the durable Chat Store as the realtime core consumes it.
// Implementations must express each mutation as an atomic sub-document
// operation; interleaved handlers on the same chat must not lose updates.
// All failures come back as coded errors (errs.CodeError).
type Store interface {
	ChatMeta(ctx context.Context, chatID string) (*chatmodel.Chat, error)
	AppendMessage(ctx context.Context, chatID string, msg *chatmodel.Message) error
	EditMessage(ctx context.Context, chatID, messageID, senderID, content string, at time.Time) error
	DeleteMessage(ctx context.Context, chatID, messageID, senderID string, at time.Time) error
	AddReaction(ctx context.Context, chatID, messageID, userID, symbol string) error
	RemoveReaction(ctx context.Context, chatID, messageID, userID, symbol string) error
	MarkRead(ctx context.Context, chatID string, messageIDs []string, userID string, at time.Time) error
}

// Verifier resolves a connection-time credential to a user snapshot.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*usermodel.Snapshot, error)
}
