package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeExtraction(t *testing.T) {
	assert.Equal(t, 0, Code(nil))
	assert.Equal(t, RecordNotFoundError, Code(ErrNotFound))
	assert.Equal(t, RecordNotFoundError, Code(ErrNotFound.WrapMsg("chat not found", "chatId", "c1")))
	assert.Equal(t, ServerInternalError, Code(errors.New("plain")))
}

func TestIsMatchesByCode(t *testing.T) {
	err := ErrValidation.WrapMsg("chatId is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, ErrValidation), "Is must see through wrapping")
}

func TestWrapMsgKeepsBaseUntouched(t *testing.T) {
	err := ErrAuthorization.WrapMsg("not the message owner", "messageId", "m1")

	var codeErr *CodeError
	assert.True(t, errors.As(err, &codeErr))
	assert.Equal(t, AuthorizationError, codeErr.Code)
	assert.Contains(t, codeErr.Detail, "messageId=m1")

	assert.Empty(t, ErrAuthorization.Detail, "the shared sentinel must never mutate")
}

func TestWithDetailAccumulates(t *testing.T) {
	e := ErrUpstream.WithDetail("cdn rejected upload").WithDetail("status 503")
	assert.Contains(t, e.Detail, "cdn rejected upload")
	assert.Contains(t, e.Detail, "status 503")
}

func TestErrorString(t *testing.T) {
	e := NewCodeError(1104, "invalid argument").WithDetail("content is required")
	assert.Equal(t, "1104 invalid argument content is required", e.Error())
}

func TestNewAdHoc(t *testing.T) {
	e := New("mongo init failed", "uri", "mongodb://x")
	assert.Equal(t, ServerInternalError, e.Code)
	assert.Contains(t, e.Msg, "uri=mongodb://x")
}
