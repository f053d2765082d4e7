package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

type CodeErrorI interface {
	ECode() int
	EMsg() string
	WithDetail(detail string) *CodeError
	error
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// New builds an ad-hoc internal error from a message and optional kv pairs.
func New(msg string, kv ...any) *CodeError {
	return &CodeError{
		Code: ServerInternalError,
		Msg:  toString(msg, kv),
	}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func (e *CodeError) ECode() int   { return e.Code }
func (e *CodeError) EMsg() string { return e.Msg }

func (e *CodeError) WithDetail(detail string) *CodeError {
	var d string
	if e.Detail == "" {
		d = detail
	} else {
		d = e.Detail + ", " + detail
	}
	return &CodeError{
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: d,
	}
}

func (e *CodeError) Wrap() error {
	return pkgerrors.WithStack(e)
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: e.Detail,
	}
}

func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	retErr := e.clone()
	if msg != "" || len(kv) > 0 {
		detail := toString(msg, kv)
		if retErr.Detail == "" {
			retErr.Detail = detail
		} else {
			retErr.Detail += ", " + detail
		}
	}
	return pkgerrors.WithStack(retErr)
}

// Is reports whether err carries the same code as e. Works through
// wrapped chains, so errors.Is(err, ErrNotFound) does the expected thing.
func (e *CodeError) Is(err error) bool {
	var codeErr *CodeError
	ok := errors.As(Unwrap(err), &codeErr)
	if !ok {
		if err == nil && e == nil {
			return true
		}
		return false
	}
	if e == nil {
		return false
	}
	return e.Code == codeErr.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)

	if e.Detail != "" {
		v = append(v, e.Detail)
	}

	return strings.Join(v, " ")
}

// Code extracts the numeric code from err; unknown errors map to
// ServerInternalError.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return ServerInternalError
}

func Unwrap(err error) error {
	for err != nil {
		unwrap, ok := err.(interface {
			error
			Unwrap() error
		})
		if !ok {
			break
		}
		err = unwrap.Unwrap()
		if err == nil {
			return unwrap
		}
	}
	return err
}

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, toString(msg, kv))
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i > 0 || msg != "" {
			sb.WriteString(", ")
		}
		key, _ := kv[i].(string)
		sb.WriteString(key)
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(anyToString(kv[i+1]))
		}
	}
	return sb.String()
}

func anyToString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(v)
	}
}
