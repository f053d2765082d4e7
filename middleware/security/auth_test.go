package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	usermodel "MChat/module/user/model"
	"MChat/tools/errs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	want string
	snap usermodel.Snapshot
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (*usermodel.Snapshot, error) {
	if token != f.want {
		return nil, errs.ErrAuthentication.WrapMsg("bad token")
	}
	s := f.snap
	return &s, nil
}

func testRouter(v TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", Middleware(v), func(c *gin.Context) {
		snap, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": snap.UserID})
	})
	return r
}

func TestMiddlewareAcceptsBearer(t *testing.T) {
	v := &fakeVerifier{want: "tok-1", snap: usermodel.Snapshot{UserID: "u1", Nickname: "Alice"}}
	r := testRouter(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"u1"`)
}

func TestMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	v := &fakeVerifier{want: "tok-1"}
	r := testRouter(v)

	for _, header := range []string{"", "Bearer wrong", "Basic abc", "tok-1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header=%q", header)
	}
}

func TestCurrentUserAbsent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}
