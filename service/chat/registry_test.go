package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usermodel "MChat/module/user/model"
)

func testConn(id, userID string) *WsConn {
	return newWsConn(id, usermodel.Snapshot{UserID: userID, Nickname: "u-" + userID}, nil, 32)
}

func TestRegistryFirstAndLastSession(t *testing.T) {
	r := NewRegistry()

	c1 := testConn("c1", "alice")
	c2 := testConn("c2", "alice")

	assert.True(t, r.Register(c1), "first session must report the offline->online transition")
	assert.False(t, r.Register(c2), "second session must not")

	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, []string{"alice"}, r.OnlineUserIDs(), "multi-session user appears once")

	assert.False(t, r.Unregister(c1), "closing one of two sessions must not mark offline")
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, []string{"alice"}, r.OnlineUserIDs())

	assert.True(t, r.Unregister(c2), "closing the last session is the online->offline transition")
	assert.False(t, r.IsOnline("alice"))
	assert.Empty(t, r.OnlineUserIDs())
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	c := testConn("c1", "bob")

	assert.False(t, r.Unregister(c), "unknown session must be a no-op")

	r.Register(c)
	assert.True(t, r.Unregister(c))
	assert.False(t, r.Unregister(c), "double unregister must not fire offline twice")
}

func TestRegistryOnlineUserIDsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(testConn("c1", "zoe"))
	r.Register(testConn("c2", "adam"))
	r.Register(testConn("c3", "mia"))

	assert.Equal(t, []string{"adam", "mia", "zoe"}, r.OnlineUserIDs())
}

func TestRegistryUserConns(t *testing.T) {
	r := NewRegistry()
	c1 := testConn("c1", "alice")
	c2 := testConn("c2", "alice")
	r.Register(c1)
	r.Register(c2)

	conns := r.UserConns("alice")
	require.Len(t, conns, 2)
	assert.Nil(t, r.UserConns("nobody"))

	all := r.AllConns()
	assert.Len(t, all, 2)
}
