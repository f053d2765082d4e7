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
	"MChat/tools/ids"
)

// ChatService is the durable Chat Store. It is the single source of truth
// for chat history; the realtime layer broadcasts only after this layer
// has persisted.
type ChatService struct{}

func NewChatService() *ChatService { return &ChatService{} }

func (s *ChatService) coll() *mongo.Collection {
	return (&model.Chat{}).Collection()
}

// EnsureIndexes creates the indexes the store relies on. The partial
// unique index on pair_key is what enforces one direct chat per pair.
func (s *ChatService) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"pair_key": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "participants", Value: 1}},
		},
	})
	return errs.WrapMsg(err, "chat index create")
}

// CreateDirectChat returns the existing direct chat between the two users
// or creates it. Racing creators are resolved by the unique pair_key
// index: the loser re-reads.
func (s *ChatService) CreateDirectChat(ctx context.Context, a, b string) (*model.Chat, error) {
	if a == "" || b == "" {
		return nil, errs.ErrValidation.WrapMsg("both participants are required")
	}
	pairKey := model.DirectPairKey(a, b)

	if c, err := s.findByPairKey(ctx, pairKey); err == nil {
		return c, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUpstream.WrapMsg("direct chat lookup failed", "err", err)
	}

	now := time.Now()
	participants := []string{a, b}
	if a == b {
		participants = []string{a}
	}
	c := &model.Chat{
		ChatID:       ids.GenerateString(),
		Participants: participants,
		IsGroup:      false,
		PairKey:      pairKey,
		Messages:     []model.Message{},
		CreateTime:   now,
		UpdateTime:   now,
	}
	if _, err := s.coll().InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if existing, ferr := s.findByPairKey(ctx, pairKey); ferr == nil {
				return existing, nil
			}
		}
		return nil, errs.ErrUpstream.WrapMsg("direct chat insert failed", "err", err)
	}
	return c, nil
}

// CreateGroupChat creates a group document; the creator becomes admin and
// is always a participant.
func (s *ChatService) CreateGroupChat(ctx context.Context, creator, name string, members []string, icon string) (*model.Chat, error) {
	if creator == "" || name == "" {
		return nil, errs.ErrValidation.WrapMsg("creator and group name are required")
	}
	participants := []string{creator}
	for _, m := range members {
		if m != "" && m != creator && !contains(participants, m) {
			participants = append(participants, m)
		}
	}
	if len(participants) < 2 {
		return nil, errs.ErrValidation.WrapMsg("a group needs at least two participants")
	}

	now := time.Now()
	c := &model.Chat{
		ChatID:       ids.GenerateString(),
		Participants: participants,
		IsGroup:      true,
		GroupName:    name,
		GroupAdmin:   creator,
		GroupIcon:    icon,
		Messages:     []model.Message{},
		CreateTime:   now,
		UpdateTime:   now,
	}
	if _, err := s.coll().InsertOne(ctx, c); err != nil {
		return nil, errs.ErrUpstream.WrapMsg("group chat insert failed", "err", err)
	}
	return c, nil
}

// ChatMeta loads a chat without its message log; used for participant
// authorization checks on the hot path.
func (s *ChatService) ChatMeta(ctx context.Context, chatID string) (*model.Chat, error) {
	var c model.Chat
	err := s.coll().FindOne(ctx, bson.M{"chat_id": chatID},
		options.FindOne().SetProjection(bson.M{"messages": 0}),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound.WrapMsg("chat not found", "chatId", chatID)
		}
		return nil, errs.ErrUpstream.WrapMsg("chat lookup failed", "err", err)
	}
	return &c, nil
}

// ListChats returns the caller's chats, most recently updated first, each
// trimmed to its latest message for preview rendering.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]*model.Chat, error) {
	cur, err := s.coll().Find(ctx, bson.M{"participants": userID},
		options.Find().
			SetProjection(bson.M{"messages": bson.M{"$slice": -1}}).
			SetSort(bson.D{{Key: "update_time", Value: -1}}),
	)
	if err != nil {
		return nil, errs.ErrUpstream.WrapMsg("chat list failed", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*model.Chat
	for cur.Next(ctx) {
		var c model.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, errs.WrapMsg(err, "chat decode")
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (s *ChatService) findByPairKey(ctx context.Context, pairKey string) (*model.Chat, error) {
	var c model.Chat
	err := s.coll().FindOne(ctx, bson.M{"pair_key": pairKey},
		options.FindOne().SetProjection(bson.M{"messages": bson.M{"$slice": -1}}),
	).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
