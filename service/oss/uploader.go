package oss

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"MChat/tools/errs"
)

// Uploader stores an image blob somewhere public and returns its URL.
// The realtime core never touches blobs itself; it only relays URLs.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// HTTPUploader posts multipart blobs to an external CDN endpoint that
// answers {"url": "..."}.
type HTTPUploader struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewHTTPUploader(endpoint, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if u.Endpoint == "" {
		return "", errs.ErrUpstream.WrapMsg("no CDN endpoint configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", errs.WrapMsg(err, "create multipart part")
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", errs.WrapMsg(err, "read blob")
	}
	if err := mw.Close(); err != nil {
		return "", errs.WrapMsg(err, "finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, &body)
	if err != nil {
		return "", errs.WrapMsg(err, "build upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.APIKey)
	}

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", errs.ErrUpstream.WrapMsg("cdn upload failed", "err", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return "", errs.ErrUpstream.WrapMsg("cdn upload rejected", "status", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errs.ErrUpstream.WrapMsg("cdn response decode failed", "err", err)
	}
	if out.URL == "" {
		return "", errs.ErrUpstream.WrapMsg("cdn returned empty url")
	}
	return out.URL, nil
}
