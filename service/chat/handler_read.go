package chat

import (
	"context"
	"time"

	"MChat/tools/errs"
)

// handleMarkRead stores one read receipt per listed message (the store
// skips messages the caller already receipted, one write per batch) and
// tells everyone else in the room. The marking session is excluded; you
// don't need to hear that you read something.
func (s *Server) handleMarkRead(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[MarkReadReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" || len(req.MessageIDs) == 0 {
		return errs.ErrValidation.WrapMsg("chatId and messageIds are required")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}

	if err := s.store.MarkRead(ctx, req.ChatID, req.MessageIDs, c.User.UserID, time.Now()); err != nil {
		return err
	}

	s.rooms.BroadcastExceptSender(req.ChatID, MarshalFrame(EvtMessagesRead, MessagesRead{
		ChatID:     req.ChatID,
		MessageIDs: req.MessageIDs,
		UserID:     c.User.UserID,
	}), c)
	return nil
}
