package chat

import (
	"context"

	"MChat/tools/errs"
)

// Room joins carry no authorization check by themselves; every handler
// that acts on room traffic re-checks participant membership against the
// store first.

func (s *Server) handleJoinChat(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[JoinChatReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" {
		return errs.ErrValidation.WrapMsg("chatId is required")
	}
	s.rooms.Join(c, req.ChatID)
	return nil
}

func (s *Server) handleJoinChats(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[JoinChatsReq](f)
	if err != nil {
		return err
	}
	if len(req.ChatIDs) == 0 {
		return errs.ErrValidation.WrapMsg("chatIds is required")
	}
	for _, id := range req.ChatIDs {
		if id != "" {
			s.rooms.Join(c, id)
		}
	}
	return nil
}
