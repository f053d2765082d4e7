package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDirectPairKey(t *testing.T) {
	assert.Equal(t, DirectPairKey("alice", "bob"), DirectPairKey("bob", "alice"),
		"the key is order-independent")
	assert.Equal(t, "alice|bob", DirectPairKey("bob", "alice"))
	assert.Equal(t, "alice", DirectPairKey("alice", "alice"), "self-chat collapses")
	assert.NotEqual(t, DirectPairKey("alice", "bob"), DirectPairKey("alice", "carol"))
}

func TestHasParticipant(t *testing.T) {
	c := &Chat{Participants: []string{"alice", "bob"}}
	assert.True(t, c.HasParticipant("alice"))
	assert.False(t, c.HasParticipant("mallory"))
	assert.False(t, c.HasParticipant(""))
}

func TestFindMessage(t *testing.T) {
	c := &Chat{Messages: []Message{
		{MessageID: "m1", Content: "a"},
		{MessageID: "m2", Content: "b"},
	}}

	m := c.FindMessage("m2")
	require.NotNil(t, m)
	assert.Equal(t, "b", m.Content)

	// the pointer addresses the slice entry, not a copy
	m.Content = "patched"
	assert.Equal(t, "patched", c.Messages[1].Content)

	assert.Nil(t, c.FindMessage("missing"))
}

func TestMessagePersistsReactionsAsArray(t *testing.T) {
	// The reaction updates address reactions through array filters, which
	// mongo rejects on a missing or null field. A fresh message must
	// therefore encode the field as a real (empty) array.
	msg := Message{
		MessageID:  "m1",
		SenderID:   "alice",
		Content:    "hi",
		CreateTime: time.Now(),
		Reactions:  []ReactionEntry{},
	}

	raw, err := bson.Marshal(msg)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	v, ok := doc["reactions"]
	require.True(t, ok, "reactions field must be present")
	arr, ok := v.(primitive.A)
	require.True(t, ok, "reactions must be an array, not null (got %T)", v)
	assert.Empty(t, arr)
}
