package chat

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"MChat/middleware"
	midsec "MChat/middleware/security"
	chatmodel "MChat/module/chat/model"
	"MChat/module/chat/service"
	chatws "MChat/service/chat"
	"MChat/service/oss"
	"MChat/tools/errs"
	"MChat/tools/ids"
)

// Handler is the non-realtime fallback surface. It reads and writes the
// same Chat Store the websocket core mutates, so a client without a
// persistent connection sees consistent state.
type Handler struct {
	chats    *service.ChatService
	uploader oss.Uploader
	rt       *chatws.Server // realtime fan-out for HTTP sends; may be nil
}

func NewHandler(chats *service.ChatService, uploader oss.Uploader, rt *chatws.Server) *Handler {
	return &Handler{chats: chats, uploader: uploader, rt: rt}
}

func (h *Handler) ListChats(c *gin.Context) {
	snap, _ := midsec.CurrentUser(c)
	list, err := h.chats.ListChats(c.Request.Context(), snap.UserID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"chats": list})
}

func (h *Handler) CreateDirect(c *gin.Context) {
	snap, _ := midsec.CurrentUser(c)
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		middleware.WriteError(c, errs.ErrValidation.WrapMsg("userId is required"))
		return
	}
	chat, err := h.chats.CreateDirectChat(c.Request.Context(), snap.UserID, req.UserID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"chat": chat})
}

func (h *Handler) CreateGroup(c *gin.Context) {
	snap, _ := midsec.CurrentUser(c)
	var req struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
		Icon    string   `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, errs.ErrValidation.WrapMsg("bad request body"))
		return
	}
	chat, err := h.chats.CreateGroupChat(c.Request.Context(), snap.UserID, req.Name, req.Members, req.Icon)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"chat": chat})
}

// GetMessages serves a page of history, oldest-first. The persisted log
// is the ordering ground truth regardless of realtime delivery races.
func (h *Handler) GetMessages(c *gin.Context) {
	snap, _ := midsec.CurrentUser(c)
	chatID := c.Param("chatId")

	meta, err := h.chats.ChatMeta(c.Request.Context(), chatID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if !meta.HasParticipant(snap.UserID) {
		middleware.WriteError(c, errs.ErrAuthorization.WrapMsg("not a chat participant"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := h.chats.GetMessages(c.Request.Context(), chatID, c.Query("before"), limit)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"messages": msgs})
}

// SendMessage is the multipart send path: optional image part uploads to
// the CDN first; only a confirmed upload may become part of a message,
// so an upload failure writes nothing.
func (h *Handler) SendMessage(c *gin.Context) {
	snap, _ := midsec.CurrentUser(c)
	chatID := c.Param("chatId")
	ctx := c.Request.Context()

	meta, err := h.chats.ChatMeta(ctx, chatID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	if !meta.HasParticipant(snap.UserID) {
		middleware.WriteError(c, errs.ErrAuthorization.WrapMsg("not a chat participant"))
		return
	}

	content := c.PostForm("content")
	tempID := c.PostForm("tempId")

	imageURL := ""
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			middleware.WriteError(c, errs.ErrValidation.WrapMsg("unreadable image part"))
			return
		}
		defer func() { _ = f.Close() }()
		imageURL, err = h.uploader.Upload(ctx, fh.Filename, f)
		if err != nil {
			middleware.WriteError(c, err)
			return
		}
	}

	if content == "" && imageURL == "" {
		middleware.WriteError(c, errs.ErrValidation.WrapMsg("message needs text or an image"))
		return
	}

	msg := &chatmodel.Message{
		MessageID:  ids.GenerateString(),
		SenderID:   snap.UserID,
		Content:    content,
		ImageURL:   imageURL,
		CreateTime: time.Now(),
		Reactions:  []chatmodel.ReactionEntry{},
	}
	if err := h.chats.AppendMessage(ctx, chatID, msg); err != nil {
		middleware.WriteError(c, err)
		return
	}

	if h.rt != nil {
		h.rt.DeliverMessage(ctx, meta, msg, snap, tempID)
	}
	middleware.WriteOK(c, gin.H{"message": msg, "tempId": tempID})
}
