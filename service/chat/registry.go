package chat

import (
	"sort"
	"sync"
)

// Registry is the process-wide presence table: userID -> live sessions.
// A user is online iff their session set is non-empty; that derived fact
// is the only notion of presence in the system.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*WsConn // userID -> connID -> conn
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]*WsConn),
	}
}

// Register adds a session and reports whether this was the user's first,
// i.e. the offline->online transition.
func (r *Registry) Register(c *WsConn) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.byUser[c.User.UserID]
	if m == nil {
		m = make(map[string]*WsConn)
		r.byUser[c.User.UserID] = m
		first = true
	}
	m[c.ID] = c
	return first
}

// Unregister removes a session and reports whether it was the user's
// last. Removing one of several sessions never marks the user offline.
func (r *Registry) Unregister(c *WsConn) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.byUser[c.User.UserID]
	if m == nil {
		return false
	}
	if _, ok := m[c.ID]; !ok {
		return false
	}
	delete(m, c.ID)
	if len(m) == 0 {
		delete(r.byUser, c.User.UserID)
		return true
	}
	return false
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// OnlineUserIDs returns the sorted set of online user ids.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// UserConns lists the user's live sessions.
func (r *Registry) UserConns(userID string) []*WsConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*WsConn, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// AllConns snapshots every live session across all users.
func (r *Registry) AllConns() []*WsConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*WsConn
	for _, m := range r.byUser {
		for _, c := range m {
			out = append(out, c)
		}
	}
	return out
}
