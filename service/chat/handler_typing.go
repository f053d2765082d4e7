package chat

import (
	"context"

	"MChat/tools/errs"
)

// handleTyping relays an ephemeral typing indicator. Nothing is
// persisted and the server tracks no typing state; debounce and timeout
// are the sender's concern. The originating session is excluded to avoid
// echo.
func (s *Server) handleTyping(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[TypingReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" {
		return errs.ErrValidation.WrapMsg("chatId is required")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}

	s.rooms.BroadcastExceptSender(req.ChatID, MarshalFrame(EvtUserTyping, UserTyping{
		UserID:   c.User.UserID,
		IsTyping: req.IsTyping,
		ChatID:   req.ChatID,
		UserName: c.User.Nickname,
	}), c)
	return nil
}
