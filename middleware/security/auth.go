package security

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	usermodel "MChat/module/user/model"
	"MChat/tools/errs"
)

// Context keys the downstream handlers read.
const (
	CtxUserKey   = "authUser" // usermodel.Snapshot
	CtxUserIDKey = "authUserId"
)

// TokenVerifier is the same verification gate the websocket handshake
// uses; HTTP and realtime auth cannot drift apart.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*usermodel.Snapshot, error)
}

// Middleware authenticates a request via Authorization: Bearer and puts
// the resolved user snapshot into the gin context.
func Middleware(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		snap, err := v.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errs.Code(err),
				"msg":  "authentication failed",
			})
			return
		}
		c.Set(CtxUserKey, *snap)
		c.Set(CtxUserIDKey, snap.UserID)
		c.Next()
	}
}

// CurrentUser returns the authenticated snapshot set by Middleware.
func CurrentUser(c *gin.Context) (usermodel.Snapshot, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return usermodel.Snapshot{}, false
	}
	snap, ok := v.(usermodel.Snapshot)
	return snap, ok
}
