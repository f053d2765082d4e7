package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	mongoutil "MChat/data/database/mgo/mongoutil"
	"MChat/module/chat/model"
	"MChat/service/mgo"
	"MChat/tools/errs"
	"MChat/tools/ids"
)

// These run against a live mongod and pin the conditional-update
// semantics the in-memory fakes only mirror; set MONGO_URI to enable.

func mongoService(t *testing.T) *ChatService {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("set MONGO_URI to run mongo-backed store tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, mgo.Init(ctx, &mongoutil.Config{
		Uri:      uri,
		Database: "mchat_test",
	}))
	return NewChatService()
}

func seedChatWithMessage(t *testing.T, s *ChatService, a, b string) (*model.Chat, *model.Message) {
	t.Helper()
	ctx := context.Background()
	chat, err := s.CreateDirectChat(ctx, a, b)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.coll().DeleteOne(context.Background(), bson.M{"chat_id": chat.ChatID})
	})

	msg := &model.Message{
		MessageID:  ids.GenerateString(),
		SenderID:   a,
		Content:    "hi",
		CreateTime: time.Now(),
		Reactions:  []model.ReactionEntry{},
	}
	require.NoError(t, s.AppendMessage(ctx, chat.ChatID, msg))
	return chat, msg
}

func loadMessage(t *testing.T, s *ChatService, chatID, messageID string) *model.Message {
	t.Helper()
	page, err := s.GetMessages(context.Background(), chatID, "", 0)
	require.NoError(t, err)
	for i := range page {
		if page[i].MessageID == messageID {
			return &page[i]
		}
	}
	t.Fatalf("message %s not found in chat %s", messageID, chatID)
	return nil
}

func TestMongoFirstReactionOnFreshMessage(t *testing.T) {
	s := mongoService(t)
	a, b := ids.GenerateString(), ids.GenerateString()
	chat, msg := seedChatWithMessage(t, s, a, b)
	ctx := context.Background()

	// the first reaction goes through the guarded entry-creating push
	require.NoError(t, s.AddReaction(ctx, chat.ChatID, msg.MessageID, b, "👍"))
	// re-adding is idempotent
	require.NoError(t, s.AddReaction(ctx, chat.ChatID, msg.MessageID, b, "👍"))
	// a second reactor lands in the same entry
	require.NoError(t, s.AddReaction(ctx, chat.ChatID, msg.MessageID, a, "👍"))

	stored := loadMessage(t, s, chat.ChatID, msg.MessageID)
	require.Len(t, stored.Reactions, 1)
	assert.Equal(t, "👍", stored.Reactions[0].Symbol)
	assert.ElementsMatch(t, []string{a, b}, stored.Reactions[0].Users)
}

func TestMongoRemoveReactionPrunesAndNoOps(t *testing.T) {
	s := mongoService(t)
	a, b := ids.GenerateString(), ids.GenerateString()
	chat, msg := seedChatWithMessage(t, s, a, b)
	ctx := context.Background()

	// removing from a message nobody reacted to is a silent no-op
	require.NoError(t, s.RemoveReaction(ctx, chat.ChatID, msg.MessageID, b, "👍"))

	require.NoError(t, s.AddReaction(ctx, chat.ChatID, msg.MessageID, b, "👍"))
	require.NoError(t, s.RemoveReaction(ctx, chat.ChatID, msg.MessageID, b, "👍"))

	stored := loadMessage(t, s, chat.ChatID, msg.MessageID)
	assert.Empty(t, stored.Reactions, "a drained entry must be pruned, not kept empty")

	// unknown message still classifies as not found
	err := s.AddReaction(ctx, chat.ChatID, "no-such-message", b, "👍")
	assert.Equal(t, errs.RecordNotFoundError, errs.Code(err))
}

func TestMongoMarkReadDeduplicates(t *testing.T) {
	s := mongoService(t)
	a, b := ids.GenerateString(), ids.GenerateString()
	chat, msg := seedChatWithMessage(t, s, a, b)
	ctx := context.Background()

	mark := []string{msg.MessageID}
	require.NoError(t, s.MarkRead(ctx, chat.ChatID, mark, b, time.Now()))
	require.NoError(t, s.MarkRead(ctx, chat.ChatID, mark, b, time.Now()))

	stored := loadMessage(t, s, chat.ChatID, msg.MessageID)
	require.Len(t, stored.ReadBy, 1, "one receipt per user per message")
	assert.Equal(t, b, stored.ReadBy[0].UserID)
}
