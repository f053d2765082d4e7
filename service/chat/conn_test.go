package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnSendDropsWhenQueueFull(t *testing.T) {
	c := newWsConn("c1", testConn("x", "alice").User, nil, 2)

	assert.True(t, c.Send([]byte("a")))
	assert.True(t, c.Send([]byte("b")))
	assert.False(t, c.Send([]byte("c")), "a slow consumer must not block the broadcaster")

	// the queued frames are intact
	assert.Equal(t, "a", string(<-c.send))
	assert.Equal(t, "b", string(<-c.send))
}

func TestConnSendAfterShutdown(t *testing.T) {
	c := testConn("c1", "alice")
	c.shutdown()
	assert.False(t, c.Send([]byte("late")), "sends after shutdown must not panic")
	c.shutdown() // idempotent

	_, open := <-c.send
	assert.False(t, open)
}

func TestConnSendNil(t *testing.T) {
	c := testConn("c1", "alice")
	assert.False(t, c.Send(nil), "a failed marshal yields nil and is skipped")
}
