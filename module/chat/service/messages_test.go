package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MChat/module/chat/model"
)

func msgLog(n int) []model.Message {
	out := make([]model.Message, n)
	for i := range out {
		out[i] = model.Message{MessageID: fmt.Sprintf("m%d", i+1)}
	}
	return out
}

func idsOf(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.MessageID
	}
	return out
}

func TestPageBeforeNewestPage(t *testing.T) {
	msgs := msgLog(5)

	page := pageBefore(msgs, "", 3)
	assert.Equal(t, []string{"m3", "m4", "m5"}, idsOf(page), "the newest page keeps oldest-first order")

	page = pageBefore(msgs, "", 10)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, idsOf(page))
}

func TestPageBeforeCursor(t *testing.T) {
	msgs := msgLog(6)

	page := pageBefore(msgs, "m5", 2)
	assert.Equal(t, []string{"m3", "m4"}, idsOf(page))

	// paging all the way back
	page = pageBefore(msgs, "m3", 10)
	assert.Equal(t, []string{"m1", "m2"}, idsOf(page))

	page = pageBefore(msgs, "m1", 10)
	assert.Empty(t, page)
}

func TestPageBeforeUnknownCursor(t *testing.T) {
	msgs := msgLog(3)
	page := pageBefore(msgs, "does-not-exist", 2)
	assert.Equal(t, []string{"m2", "m3"}, idsOf(page), "an unknown cursor falls back to the newest page")
}

func TestPageBeforeCopies(t *testing.T) {
	msgs := msgLog(3)
	page := pageBefore(msgs, "", 3)
	require.Len(t, page, 3)
	page[0].Content = "mutated"
	assert.Empty(t, msgs[0].Content, "the page must not alias the backing log")
}
