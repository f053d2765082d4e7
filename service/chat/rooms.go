package chat

import (
	"sync"
)

// Rooms maps broadcast groups to the sessions joined to them. A room is
// either a chat id or a user's private room (room id == user id), which
// every session auto-joins at connect time.
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*WsConn   // roomID -> connID -> conn
	byConn map[string]map[string]struct{}  // connID -> set of joined roomIDs
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]*WsConn),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds the session to a room. No authorization happens here;
// handlers re-check chat membership before acting on room traffic.
func (r *Rooms) Join(c *WsConn, roomID string) {
	if roomID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.rooms[roomID]
	if m == nil {
		m = make(map[string]*WsConn)
		r.rooms[roomID] = m
	}
	m[c.ID] = c

	joined := r.byConn[c.ID]
	if joined == nil {
		joined = make(map[string]struct{})
		r.byConn[c.ID] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes the session from one room, pruning empty rooms.
func (r *Rooms) Leave(c *WsConn, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, roomID)
}

// LeaveAll removes the session from every room it joined; runs on
// disconnect.
func (r *Rooms) LeaveAll(c *WsConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID := range r.byConn[c.ID] {
		r.leaveLocked(c, roomID)
	}
	delete(r.byConn, c.ID)
}

func (r *Rooms) leaveLocked(c *WsConn, roomID string) {
	if m := r.rooms[roomID]; m != nil {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if joined := r.byConn[c.ID]; joined != nil {
		delete(joined, roomID)
	}
}

// InRoom reports whether this session joined the room.
func (r *Rooms) InRoom(c *WsConn, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byConn[c.ID][roomID]
	return ok
}

// UserInRoom reports whether any of the user's sessions joined the room.
func (r *Rooms) UserInRoom(roomID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.rooms[roomID] {
		if c.User.UserID == userID {
			return true
		}
	}
	return false
}

// BroadcastToRoom delivers a frame to every session joined to the room.
func (r *Rooms) BroadcastToRoom(roomID string, data []byte) {
	for _, c := range r.members(roomID) {
		c.Send(data)
	}
}

// BroadcastToUser delivers to the user's private room: all of that user's
// sessions, regardless of chat-room membership.
func (r *Rooms) BroadcastToUser(userID string, data []byte) {
	r.BroadcastToRoom(userID, data)
}

// BroadcastExceptSender delivers to the room minus the originating
// session (typing indicators, read receipts).
func (r *Rooms) BroadcastExceptSender(roomID string, data []byte, sender *WsConn) {
	for _, c := range r.members(roomID) {
		if sender != nil && c.ID == sender.ID {
			continue
		}
		c.Send(data)
	}
}

// members snapshots a room under the read lock; sends happen outside it.
func (r *Rooms) members(roomID string) []*WsConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.rooms[roomID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*WsConn, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
