package user

import (
	"github.com/gin-gonic/gin"

	"MChat/middleware"
	midsec "MChat/middleware/security"
	"MChat/module/user/service"
	"MChat/tools/errs"
)

type Handler struct {
	svc *service.UserService
}

func NewHandler(svc *service.UserService) *Handler {
	return &Handler{svc: svc}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, errs.ErrValidation.WrapMsg("bad request body"))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req.Username, req.Password, req.Nickname)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"user": u.Snapshot()})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, errs.ErrValidation.WrapMsg("bad request body"))
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{"token": token, "user": u.Snapshot()})
}

func (h *Handler) Logout(c *gin.Context) {
	snap, ok := midsec.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrAuthentication.Wrap())
		return
	}
	if err := h.svc.Logout(c.Request.Context(), snap.UserID); err != nil {
		middleware.WriteError(c, err)
		return
	}
	middleware.WriteOK(c, gin.H{})
}

func (h *Handler) Me(c *gin.Context) {
	snap, ok := midsec.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrAuthentication.Wrap())
		return
	}
	middleware.WriteOK(c, gin.H{"user": snap})
}
