package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MChat/tools/errs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errs.ErrAuthentication.WrapMsg("bad token"), http.StatusUnauthorized},
		{errs.ErrTokenExpired.WrapMsg(""), http.StatusUnauthorized},
		{errs.ErrAuthorization.WrapMsg("not a participant"), http.StatusForbidden},
		{errs.ErrNotFound.WrapMsg("chat not found"), http.StatusNotFound},
		{errs.ErrValidation.WrapMsg("content is required"), http.StatusBadRequest},
		{errs.ErrUpstream.WrapMsg("cdn down"), http.StatusBadGateway},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		WriteError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, "err=%v", tc.err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, errs.Code(tc.err), body["code"])
	}
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteOK(c, gin.H{"userId": "u1"})

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Code int            `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body.Code)
	assert.Equal(t, "u1", body.Data["userId"])
}
