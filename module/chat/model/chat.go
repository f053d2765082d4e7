package model

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"MChat/service/mgo"
)

const (
	ChatTableName = "chat"

	// DeletedPlaceholder replaces the content of a soft-deleted message.
	// The entry keeps its id and position in the log.
	DeletedPlaceholder = "This message was deleted"
)

// Chat is the per-conversation document: participant list plus the
// embedded, append-only message log. Every mutation below targets a
// sub-document so concurrent writers never clobber each other.
type Chat struct {
	ChatID       string   `bson:"chat_id" json:"id"`
	Participants []string `bson:"participants" json:"participants"`
	IsGroup      bool     `bson:"is_group" json:"isGroup"`

	// group-only fields
	GroupName  string `bson:"group_name,omitempty" json:"groupName,omitempty"`
	GroupAdmin string `bson:"group_admin,omitempty" json:"groupAdmin,omitempty"`
	GroupIcon  string `bson:"group_icon,omitempty" json:"groupIcon,omitempty"`

	// PairKey is the canonical unordered participant pair for direct
	// chats; a unique index on it keeps one direct chat per pair.
	PairKey string `bson:"pair_key,omitempty" json:"-"`

	Messages []Message `bson:"messages" json:"messages"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

// Message lives only inside its Chat document.
type Message struct {
	MessageID string `bson:"message_id" json:"id"`
	SenderID  string `bson:"sender_id" json:"senderId"`

	// at least one of Content/ImageURL is set on a live message
	Content  string `bson:"content" json:"content"`
	ImageURL string `bson:"image_url,omitempty" json:"image,omitempty"`

	CreateTime time.Time  `bson:"create_time" json:"createdAt"`
	Edited     bool       `bson:"edited" json:"edited"`
	EditTime   *time.Time `bson:"edit_time,omitempty" json:"editedAt,omitempty"`
	Deleted    bool       `bson:"deleted" json:"deleted"`

	// Reactions must persist as a real array even when empty: the store's
	// array-filter updates cannot target a missing or null field.
	Reactions []ReactionEntry `bson:"reactions" json:"reactions,omitempty"`
	ReadBy    []ReadReceipt   `bson:"read_by,omitempty" json:"readBy,omitempty"`
}

// ReactionEntry maps one reaction symbol to the set of users who placed
// it. An entry whose user set drains to empty is removed outright.
type ReactionEntry struct {
	Symbol string   `bson:"symbol" json:"symbol"`
	Users  []string `bson:"users" json:"users"`
}

// ReadReceipt records one user having read a message; at most one entry
// per user per message.
type ReadReceipt struct {
	UserID string    `bson:"user_id" json:"userId"`
	ReadAt time.Time `bson:"read_at" json:"readAt"`
}

func (*Chat) TableName() string { return ChatTableName }

func (c *Chat) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(ChatTableName)
}

// HasParticipant reports membership of userID in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// FindMessage returns the message with the given id, or nil.
func (c *Chat) FindMessage(messageID string) *Message {
	for i := range c.Messages {
		if c.Messages[i].MessageID == messageID {
			return &c.Messages[i]
		}
	}
	return nil
}

// DirectPairKey builds the canonical unordered key for a direct chat.
// Self-chat (a == b) collapses to a single id.
func DirectPairKey(a, b string) string {
	if a == b {
		return a
	}
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}
