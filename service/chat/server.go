package chat

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"MChat/global"
	"MChat/logger"
	"MChat/service/notify"
	"MChat/tools/errs"
	"MChat/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerFunc processes one inbound event for one session.
type HandlerFunc func(ctx context.Context, c *WsConn, f *Frame) error

// Server is the connection gateway: it authenticates handshakes, owns the
// presence registry and the room router, and dispatches inbound events.
type Server struct {
	cfg      *global.AppConfig
	registry *Registry
	rooms    *Rooms
	store    Store
	users    Verifier
	notifier notify.Sender

	handlers map[string]HandlerFunc
}

func NewServer(cfg *global.AppConfig, store Store, users Verifier, notifier notify.Sender) *Server {
	s := &Server{
		cfg:      cfg,
		registry: NewRegistry(),
		rooms:    NewRooms(),
		store:    store,
		users:    users,
		notifier: notifier,
	}
	s.handlers = map[string]HandlerFunc{
		EvtJoinChat:       s.handleJoinChat,
		EvtJoinChats:      s.handleJoinChats,
		EvtSendMessage:    s.handleSendMessage,
		EvtTyping:         s.handleTyping,
		EvtEditMessage:    s.handleEditMessage,
		EvtDeleteMessage:  s.handleDeleteMessage,
		EvtAddReaction:    s.handleAddReaction,
		EvtRemoveReaction: s.handleRemoveReaction,
		EvtMarkRead:       s.handleMarkRead,
	}
	return s
}

func (s *Server) Registry() *Registry { return s.registry }
func (s *Server) Rooms() *Rooms       { return s.rooms }

// HandleWS is the /ws endpoint. The credential is verified before the
// upgrade: a bad token never becomes a session.
func (s *Server) HandleWS(c *gin.Context) {
	token := bearerToken(c)
	snap, err := s.users.VerifyToken(c.Request.Context(), token)
	if err != nil {
		logger.Infof("[ws] handshake rejected: %v", err)
		c.JSON(http.StatusUnauthorized, ErrorPayload{Code: errs.Code(err), Message: "authentication failed"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed user=%s err=%v", snap.UserID, err)
		return
	}

	conn := newWsConn(ids.GenerateString(), *snap, ws, s.cfg.SendQueueSize)
	go conn.writePump(s.cfg.PingInterval, s.cfg.WriteWait)

	s.register(conn)
	// the disconnect path must run exactly once, whatever kills the loop
	defer s.unregister(conn)

	s.readLoop(conn)
}

// register records the session, auto-joins its private room, pushes the
// presence snapshot to it, and announces the 0->1 transition.
func (s *Server) register(c *WsConn) {
	first := s.registry.Register(c)
	s.rooms.Join(c, c.User.UserID)

	c.Send(MarshalFrame(EvtOnlineUsers, s.registry.OnlineUserIDs()))
	c.Send(MarshalFrame(EvtUserStatus, UserStatus{Status: "online", UserID: c.User.UserID}))

	if first {
		// user-online fires only when the user comes from zero
		// sessions; secondary devices stay silent.
		s.broadcastAll(MarshalFrame(EvtUserOnline, UserPresence{UserID: c.User.UserID}))
		s.broadcastAll(MarshalFrame(EvtOnlineUsers, s.registry.OnlineUserIDs()))
	}
	logger.Infof("[ws] connected conn=%s user=%s first=%v", c.ID, c.User.UserID, first)
}

// unregister runs the disconnect path: leave every room, drop the
// session, and announce 1->0 if it was the last one.
func (s *Server) unregister(c *WsConn) {
	s.rooms.LeaveAll(c)
	last := s.registry.Unregister(c)
	c.shutdown()

	if last {
		s.broadcastAll(MarshalFrame(EvtUserOffline, UserPresence{UserID: c.User.UserID}))
		s.broadcastAll(MarshalFrame(EvtOnlineUsers, s.registry.OnlineUserIDs()))
	}
	logger.Infof("[ws] disconnected conn=%s user=%s last=%v", c.ID, c.User.UserID, last)
}

// readLoop is the only reader on the socket. Missing pongs beyond
// PongWait trip the read deadline, which lands here like any other read
// error and runs the same disconnect path.
func (s *Server) readLoop(c *WsConn) {
	ws := c.conn
	ws.SetReadLimit(s.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s err=%v", c.ID, err)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] keepalive timeout conn=%s err=%v", c.ID, err)
			} else {
				logger.Infof("[ws] read error conn=%s err=%v", c.ID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, perr := ParseFrame(data)
		if perr != nil {
			s.emitError(c, perr)
			continue
		}
		s.dispatch(context.Background(), c, f)
	}
}

// dispatch runs one handler with its own failure boundary: errors and
// panics are reported to the originating session only and never unwind
// the read loop.
func (s *Server) dispatch(ctx context.Context, c *WsConn, f *Frame) {
	h := s.handlers[f.Event]
	if h == nil {
		s.emitError(c, errs.ErrValidation.WrapMsg("unknown event", "event", f.Event))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[ws] handler panic event=%s conn=%s: %v", f.Event, c.ID, r)
			s.emitError(c, errs.ErrPanic(r))
		}
	}()
	if err := h(ctx, c, f); err != nil {
		logger.Infof("[ws] handler error event=%s conn=%s user=%s err=%v", f.Event, c.ID, c.User.UserID, err)
		s.emitError(c, err)
	}
}

// emitError reports a failure to one session as an `error` event with a
// machine-distinguishable code.
func (s *Server) emitError(c *WsConn, err error) {
	code := errs.Code(err)
	msg := "request failed"
	var codeErr *errs.CodeError
	if errors.As(err, &codeErr) {
		msg = codeErr.Msg
	}
	c.Send(MarshalFrame(EvtError, ErrorPayload{Code: code, Message: msg}))
}

func (s *Server) broadcastAll(data []byte) {
	for _, c := range s.registry.AllConns() {
		c.Send(data)
	}
}

func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	authz := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return ""
}
