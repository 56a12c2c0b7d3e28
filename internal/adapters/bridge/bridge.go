// Package bridge is the HTTP client for the loopback endpoint a native shell
// exposes to the process on mobile targets (store billing, share intents,
// health store, location fixes).
//
// Every response is an envelope:
//
//	{"data": <payload>}
//	{"error": {"code": "cancelled", "message": "user dismissed the sheet"}}
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
)

// Error codes the shell reports.
const (
	CodeUnsupported = "unsupported"
	CodeCancelled   = "cancelled"
	CodeUnavailable = "unavailable"
	CodeNotFound    = "not_found"
)

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

// Error is a failure reported by the shell.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bridge error %s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("bridge error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// CodeOf returns the shell error code of err, or "".
func CodeOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

type Client struct {
	http *http.Client
	base *url.URL
}

func New(httpClient *http.Client, baseURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse bridge url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("bridge url %q is not absolute", baseURL)
	}
	return &Client{http: httpClient, base: base}, nil
}

// Call sends body (if not nil) as JSON and returns the envelope's data.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encode bridge request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("bridge call", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("bridge %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read bridge response: %w", err)
	}

	if code := gjson.GetBytes(raw, "error.code"); code.Exists() {
		return gjson.Result{}, &Error{
			Status:  resp.StatusCode,
			Code:    code.String(),
			Message: gjson.GetBytes(raw, "error.message").String(),
		}
	}
	if resp.StatusCode >= 300 {
		return gjson.Result{}, &Error{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	}
	if len(raw) > 0 && !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("bridge %s %s: invalid json response", method, path)
	}
	return gjson.GetBytes(raw, "data"), nil
}

// Decode unmarshals a data result into out.
func Decode(data gjson.Result, out any) error {
	if !data.Exists() {
		return errors.New("bridge response has no data")
	}
	return json.Unmarshal([]byte(data.Raw), out)
}
