package oss

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MChat/tools/errs"
)

func TestUploadHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "cat.png", hdr.Filename)
		blob, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(blob))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/cat.png"}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "key-1")
	url, err := u.Upload(context.Background(), "cat.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cat.png", url)
}

func TestUploadRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "")
	_, err := u.Upload(context.Background(), "a.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUpstream), "a cdn failure must surface as an upstream error")
}

func TestUploadBadResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":""}`))
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "")
	_, err := u.Upload(context.Background(), "a.png", strings.NewReader("x"))
	assert.True(t, errors.Is(err, errs.ErrUpstream))
}

func TestUploadNoEndpoint(t *testing.T) {
	u := NewHTTPUploader("", "")
	_, err := u.Upload(context.Background(), "a.png", strings.NewReader("x"))
	assert.True(t, errors.Is(err, errs.ErrUpstream))
}
