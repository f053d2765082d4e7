package chat

import (
	"context"
	"time"

	"MChat/tools/errs"
)

// handleEditMessage updates a message in place. Only the original sender
// may edit; the store pins the sender in its conditional update and
// reports NotFound vs Authorization accordingly.
func (s *Server) handleEditMessage(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[EditMessageReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" || req.MessageID == "" {
		return errs.ErrValidation.WrapMsg("chatId and messageId are required")
	}
	if req.Content == "" {
		return errs.ErrValidation.WrapMsg("content is required")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}

	editedAt := time.Now()
	if err := s.store.EditMessage(ctx, req.ChatID, req.MessageID, c.User.UserID, req.Content, editedAt); err != nil {
		return err
	}

	s.rooms.BroadcastToRoom(req.ChatID, MarshalFrame(EvtMessageEdited, MessageEdited{
		MessageID: req.MessageID,
		Content:   req.Content,
		Edited:    true,
		EditedAt:  editedAt,
	}))
	return nil
}

// handleDeleteMessage soft-deletes: id and position survive, content
// becomes the tombstone. Same ownership rule as edit.
func (s *Server) handleDeleteMessage(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[DeleteMessageReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" || req.MessageID == "" {
		return errs.ErrValidation.WrapMsg("chatId and messageId are required")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}

	if err := s.store.DeleteMessage(ctx, req.ChatID, req.MessageID, c.User.UserID, time.Now()); err != nil {
		return err
	}

	s.rooms.BroadcastToRoom(req.ChatID, MarshalFrame(EvtMessageDeleted, MessageDeleted{
		MessageID: req.MessageID,
	}))
	return nil
}
