package chat

import (
	"time"

	chatmodel "MChat/module/chat/model"
	usermodel "MChat/module/user/model"
)

// Inbound event names (client -> server).
const (
	EvtJoinChat       = "join-chat"
	EvtJoinChats      = "join-chats"
	EvtSendMessage    = "send-message"
	EvtTyping         = "typing"
	EvtEditMessage    = "edit-message"
	EvtDeleteMessage  = "delete-message"
	EvtAddReaction    = "add-reaction"
	EvtRemoveReaction = "remove-reaction"
	EvtMarkRead       = "mark-read"
)

// Outbound event names (server -> client).
const (
	EvtOnlineUsers     = "online-users"
	EvtUserOnline      = "user-online"
	EvtUserOffline     = "user-offline"
	EvtUserStatus      = "user-status"
	EvtReceiveMessage  = "receive-message"
	EvtNewMessageNotif = "new-message-notification"
	EvtUserTyping      = "user-typing"
	EvtMessageEdited   = "message-edited"
	EvtMessageDeleted  = "message-deleted"
	EvtReactionAdded   = "reaction-added"
	EvtReactionRemoved = "reaction-removed"
	EvtMessagesRead    = "messages-read"
	EvtError           = "error"
)

// ---- inbound payloads ----

type JoinChatReq struct {
	ChatID string `json:"chatId"`
}

type JoinChatsReq struct {
	ChatIDs []string `json:"chatIds"`
}

type SendMessageReq struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	Image   string `json:"image"`
	TempID  string `json:"tempId"`
}

type TypingReq struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

type EditMessageReq struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type DeleteMessageReq struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

type ReactionReq struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type MarkReadReq struct {
	ChatID     string   `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
}

// ---- outbound payloads ----

// ReceiveMessage is the fully populated message pushed into a chat room.
// TempID is the sender's correlation id, relayed untouched.
type ReceiveMessage struct {
	chatmodel.Message
	ChatID string             `json:"chatId"`
	TempID string             `json:"tempId,omitempty"`
	Sender usermodel.Snapshot `json:"sender"`
}

type NewMessageNotif struct {
	ChatID  string         `json:"chatId"`
	Message ReceiveMessage `json:"message"`
}

type UserTyping struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
	ChatID   string `json:"chatId"`
	UserName string `json:"userName"`
}

type MessageEdited struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Edited    bool      `json:"edited"`
	EditedAt  time.Time `json:"editedAt"`
}

type MessageDeleted struct {
	MessageID string `json:"messageId"`
}

type ReactionEvent struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
	UserID    string `json:"userId"`
}

type MessagesRead struct {
	ChatID     string   `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
	UserID     string   `json:"userId"`
}

type UserStatus struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
}

type UserPresence struct {
	UserID string `json:"userId"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
