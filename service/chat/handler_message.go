package chat

import (
	"context"
	"time"

	chatmodel "MChat/module/chat/model"
	usermodel "MChat/module/user/model"
	"MChat/tools/errs"
	"MChat/tools/ids"
)

// handleSendMessage validates, persists, then broadcasts. Broadcast only
// happens after the store accepted the append, so a persistence failure
// never leaves a phantom message on other clients.
func (s *Server) handleSendMessage(ctx context.Context, c *WsConn, f *Frame) error {
	req, err := DecodePayload[SendMessageReq](f)
	if err != nil {
		return err
	}
	if req.ChatID == "" {
		return errs.ErrValidation.WrapMsg("chatId is required")
	}
	if req.Content == "" && req.Image == "" {
		return errs.ErrValidation.WrapMsg("message needs text or an image")
	}

	meta, err := s.store.ChatMeta(ctx, req.ChatID)
	if err != nil {
		return err
	}
	if !meta.HasParticipant(c.User.UserID) {
		return errs.ErrAuthorization.WrapMsg("not a chat participant", "chatId", req.ChatID)
	}

	msg := &chatmodel.Message{
		MessageID:  ids.GenerateString(),
		SenderID:   c.User.UserID,
		Content:    req.Content,
		ImageURL:   req.Image,
		CreateTime: time.Now(),
		Reactions:  []chatmodel.ReactionEntry{},
	}
	if err := s.store.AppendMessage(ctx, req.ChatID, msg); err != nil {
		return err
	}

	s.DeliverMessage(ctx, meta, msg, c.User, req.TempID)
	return nil
}

// DeliverMessage fans a persisted message out: the full message to the
// chat room, a lightweight notification to every other participant who
// is not in the room (via their private room), and an out-of-band
// notification for participants with no live session at all.
// At-least-once delivery is acceptable; the store is the ground truth,
// not the broadcast. The HTTP send path reuses this after it persists.
func (s *Server) DeliverMessage(ctx context.Context, meta *chatmodel.Chat, msg *chatmodel.Message, sender usermodel.Snapshot, tempID string) {
	payload := ReceiveMessage{
		Message: *msg,
		ChatID:  meta.ChatID,
		TempID:  tempID,
		Sender:  sender,
	}
	s.rooms.BroadcastToRoom(meta.ChatID, MarshalFrame(EvtReceiveMessage, payload))

	notif := MarshalFrame(EvtNewMessageNotif, NewMessageNotif{
		ChatID:  meta.ChatID,
		Message: payload,
	})
	preview := msg.Content
	if preview == "" {
		preview = "[image]"
	}
	for _, p := range meta.Participants {
		if p == sender.UserID || s.rooms.UserInRoom(meta.ChatID, p) {
			continue
		}
		s.rooms.BroadcastToUser(p, notif)
		if !s.registry.IsOnline(p) && s.notifier != nil {
			go s.notifier.NotifyNewMessage(context.WithoutCancel(ctx), p, meta.ChatID, preview)
		}
	}
}
