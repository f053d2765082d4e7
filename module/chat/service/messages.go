package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"MChat/module/chat/model"
	"MChat/tools/errs"
)

// Message mutations. Every write is a single conditional UpdateOne on a
// sub-document, so interleaved handlers for the same chat cannot lose
// each other's updates.

// AppendMessage appends to the chat log and bumps the chat's update time.
func (s *ChatService) AppendMessage(ctx context.Context, chatID string, msg *model.Message) error {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"update_time": msg.CreateTime},
		},
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("message append failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WrapMsg("chat not found", "chatId", chatID)
	}
	return nil
}

// EditMessage updates content in place. The filter pins the sender, so a
// non-owner edit matches nothing; classifyMessageMiss then distinguishes
// missing from forbidden.
func (s *ChatService) EditMessage(ctx context.Context, chatID, messageID, senderID, content string, at time.Time) error {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{
			"chat_id": chatID,
			"messages": bson.M{"$elemMatch": bson.M{
				"message_id": messageID,
				"sender_id":  senderID,
				"deleted":    false,
			}},
		},
		bson.M{"$set": bson.M{
			"messages.$.content":   content,
			"messages.$.edited":    true,
			"messages.$.edit_time": at,
			"update_time":          at,
		}},
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("message edit failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return s.classifyMessageMiss(ctx, chatID, messageID)
	}
	return nil
}

// DeleteMessage soft-deletes: the entry keeps its id and position, the
// content becomes the tombstone marker.
func (s *ChatService) DeleteMessage(ctx context.Context, chatID, messageID, senderID string, at time.Time) error {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{
			"chat_id": chatID,
			"messages": bson.M{"$elemMatch": bson.M{
				"message_id": messageID,
				"sender_id":  senderID,
				"deleted":    false,
			}},
		},
		bson.M{
			"$set": bson.M{
				"messages.$.content": model.DeletedPlaceholder,
				"messages.$.deleted": true,
				"update_time":        at,
			},
			"$unset": bson.M{"messages.$.image_url": ""},
		},
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("message delete failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return s.classifyMessageMiss(ctx, chatID, messageID)
	}
	return nil
}

// AddReaction inserts userID into the reactor set of the given symbol.
// Re-adding is a no-op. Two steps: $addToSet into an existing symbol
// entry, else guarded $push of a fresh entry (the guard keeps a racing
// pair from creating the symbol twice).
func (s *ChatService) AddReaction(ctx context.Context, chatID, messageID, userID, symbol string) error {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"chat_id": chatID, "messages.message_id": messageID},
		bson.M{"$addToSet": bson.M{"messages.$[m].reactions.$[r].users": userID}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"m.message_id": messageID},
			bson.M{"r.symbol": symbol},
		}}),
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("reaction add failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return s.classifyMessageMiss(ctx, chatID, messageID)
	}
	if res.ModifiedCount > 0 {
		return nil
	}

	// either the symbol entry does not exist yet, or the user already
	// reacted; the guarded push settles it
	res, err = s.coll().UpdateOne(ctx,
		bson.M{
			"chat_id": chatID,
			"messages": bson.M{"$elemMatch": bson.M{
				"message_id":       messageID,
				"reactions.symbol": bson.M{"$ne": symbol},
			}},
		},
		bson.M{"$push": bson.M{"messages.$.reactions": model.ReactionEntry{
			Symbol: symbol,
			Users:  []string{userID},
		}}},
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("reaction push failed", "err", err)
	}
	// MatchedCount == 0 here means the symbol entry already holds the
	// user: idempotent success.
	return nil
}

// RemoveReaction pulls userID from the symbol's reactor set, then prunes
// the entry if the set drained to empty.
func (s *ChatService) RemoveReaction(ctx context.Context, chatID, messageID, userID, symbol string) error {
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"chat_id": chatID, "messages.message_id": messageID},
		bson.M{"$pull": bson.M{"messages.$[m].reactions.$[r].users": userID}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"m.message_id": messageID},
			bson.M{"r.symbol": symbol},
		}}),
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("reaction remove failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return s.classifyMessageMiss(ctx, chatID, messageID)
	}

	_, err = s.coll().UpdateOne(ctx,
		bson.M{"chat_id": chatID, "messages.message_id": messageID},
		bson.M{"$pull": bson.M{"messages.$[m].reactions": bson.M{"users": bson.M{"$size": 0}}}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"m.message_id": messageID},
		}}),
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("reaction prune failed", "err", err)
	}
	return nil
}

// MarkRead appends one read receipt per listed message for userID,
// skipping messages the user already receipted. One persist per batch.
func (s *ChatService) MarkRead(ctx context.Context, chatID string, messageIDs []string, userID string, at time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"chat_id": chatID},
		bson.M{"$push": bson.M{"messages.$[m].read_by": model.ReadReceipt{
			UserID: userID,
			ReadAt: at,
		}}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{
				"m.message_id":      bson.M{"$in": messageIDs},
				"m.read_by.user_id": bson.M{"$ne": userID},
			},
		}}),
	)
	if err != nil {
		return errs.ErrUpstream.WrapMsg("mark read failed", "err", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WrapMsg("chat not found", "chatId", chatID)
	}
	return nil
}

// GetMessages returns a page of the log, oldest-first order preserved.
// beforeID == "" means the newest page. The log slice is linear by
// design; ordering ground truth is the persisted array.
func (s *ChatService) GetMessages(ctx context.Context, chatID, beforeID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var c model.Chat
	err := s.coll().FindOne(ctx, bson.M{"chat_id": chatID},
		options.FindOne().SetProjection(bson.M{"messages": 1}),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound.WrapMsg("chat not found", "chatId", chatID)
		}
		return nil, errs.ErrUpstream.WrapMsg("message fetch failed", "err", err)
	}

	return pageBefore(c.Messages, beforeID, limit), nil
}

// pageBefore slices the window of up to limit messages ending just
// before beforeID; an empty beforeID means the newest page. An unknown
// beforeID also yields the newest page rather than an error.
func pageBefore(msgs []model.Message, beforeID string, limit int) []model.Message {
	end := len(msgs)
	if beforeID != "" {
		for i := range msgs {
			if msgs[i].MessageID == beforeID {
				end = i
				break
			}
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.Message, end-start)
	copy(out, msgs[start:end])
	return out
}

// classifyMessageMiss turns a zero-match conditional update into the
// right coded error: missing chat, missing message, or not the owner.
func (s *ChatService) classifyMessageMiss(ctx context.Context, chatID, messageID string) error {
	var c model.Chat
	err := s.coll().FindOne(ctx,
		bson.M{"chat_id": chatID},
		options.FindOne().SetProjection(bson.M{
			"chat_id":  1,
			"messages": bson.M{"$elemMatch": bson.M{"message_id": messageID}},
		}),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errs.ErrNotFound.WrapMsg("chat not found", "chatId", chatID)
		}
		return errs.ErrUpstream.WrapMsg("chat lookup failed", "err", err)
	}
	if len(c.Messages) == 0 {
		return errs.ErrNotFound.WrapMsg("message not found", "messageId", messageID)
	}
	if c.Messages[0].Deleted {
		return errs.ErrNotFound.WrapMsg("message deleted", "messageId", messageID)
	}
	return errs.ErrAuthorization.WrapMsg("not the message owner", "messageId", messageID)
}
