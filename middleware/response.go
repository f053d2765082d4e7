package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"MChat/tools/errs"
)

// WriteError maps a coded error onto an HTTP status and a {code,msg}
// body; unknown errors stay opaque 500s.
func WriteError(c *gin.Context, err error) {
	code := errs.Code(err)
	msg := "request failed"
	var codeErr *errs.CodeError
	if errors.As(err, &codeErr) {
		msg = codeErr.Msg
	}

	status := http.StatusInternalServerError
	switch code {
	case errs.AuthenticationError, errs.TokenExpiredError:
		status = http.StatusUnauthorized
	case errs.AuthorizationError:
		status = http.StatusForbidden
	case errs.RecordNotFoundError:
		status = http.StatusNotFound
	case errs.ValidationError:
		status = http.StatusBadRequest
	case errs.UpstreamError:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"code": code, "msg": msg})
}

// WriteOK wraps a success payload.
func WriteOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": data})
}
