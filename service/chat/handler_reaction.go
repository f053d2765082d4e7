package chat

import (
	"context"

	"MChat/tools/errs"
)

// Reactions: any participant may react, not just the sender. Re-adding
// is a no-op in the store but the event is still broadcast, so clients
// converge even if they missed the first one.

func (s *Server) handleAddReaction(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := s.reactionReq(ctx, c, f)
	if err != nil {
		return err
	}

	if err := s.store.AddReaction(ctx, req.ChatID, req.MessageID, c.User.UserID, req.Reaction); err != nil {
		return err
	}

	s.rooms.BroadcastToRoom(req.ChatID, MarshalFrame(EvtReactionAdded, ReactionEvent{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Reaction:  req.Reaction,
		UserID:    c.User.UserID,
	}))
	return nil
}

func (s *Server) handleRemoveReaction(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := s.reactionReq(ctx, c, f)
	if err != nil {
		return err
	}

	if err := s.store.RemoveReaction(ctx, req.ChatID, req.MessageID, c.User.UserID, req.Reaction); err != nil {
		return err
	}

	s.rooms.BroadcastToRoom(req.ChatID, MarshalFrame(EvtReactionRemoved, ReactionEvent{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		Reaction:  req.Reaction,
		UserID:    c.User.UserID,
	}))
	return nil
}

func (s *Server) reactionReq(ctx context.Context, c *WsConn, f *Frame) (*ReactionReq, error) {
	req, err := DecodePayload[ReactionReq](f)
	if err != nil {
		return nil, err
	}
	if req.ChatID == "" || req.MessageID == "" || req.Reaction == "" {
		return nil, errs.ErrValidation.WrapMsg("chatId, messageId and reaction are required")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return nil, errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}
	return req, nil
}
