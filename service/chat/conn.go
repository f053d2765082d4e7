package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MChat/logger"
	usermodel "MChat/module/user/model"
)

// WsConn is one live session: a websocket connection owned by exactly one
// authenticated user. A user may hold any number of concurrent sessions.
type WsConn struct {
	ID        string
	User      usermodel.Snapshot // cached identity snapshot for this session
	CreatedAt time.Time

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newWsConn(id string, user usermodel.Snapshot, conn *websocket.Conn, queueSize int) *WsConn {
	return &WsConn{
		ID:        id,
		User:      user,
		CreatedAt: time.Now(),
		conn:      conn,
		send:      make(chan []byte, queueSize),
	}
}

// Send enqueues a frame without blocking. A full queue means the client
// is not draining; the frame is dropped and the caller told.
func (c *WsConn) Send(data []byte) bool {
	if data == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		logger.Warnf("[ws] send queue full, dropping frame conn=%s user=%s", c.ID, c.User.UserID)
		return false
	}
}

// shutdown closes the send queue once; the write pump then closes the
// underlying socket.
func (c *WsConn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump is the only writer on the socket. It drains the send queue
// and keeps the peer alive with periodic pings.
func (c *WsConn) writePump(pingInterval, writeWait time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
