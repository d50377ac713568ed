// Package remote talks to the key-value record service that mirrors a
// user's tasks. Records live at {baseURL}/{id} and carry a free-form data object.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"sticky-wall/internal/errors"
	"sticky-wall/internal/logging"
)

const (
	// DefaultBaseURL is the public record service used by the web client.
	DefaultBaseURL = "https://api.restful-api.dev/objects"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 5 * time.Second

	maxSnippetLen = 300
)

// Object is a remote record. Data fields the client does not understand are
// carried through untouched.
type Object struct {
	ID   string                     `json:"id,omitempty"`
	Name string                     `json:"name,omitempty"`
	Data map[string]json.RawMessage `json:"data"`
}

// Field decodes data[name] into v. It reports false when the field is absent or null.
func (o *Object) Field(name string, v any) (bool, error) {
	if o == nil || o.Data == nil {
		return false, nil
	}
	raw, ok := o.Data[name]
	if !ok || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode field %q: %w", name, err)
	}
	return true, nil
}

// StringField returns data[name] when it is a JSON string.
func (o *Object) StringField(name string) string {
	var s string
	if ok, err := o.Field(name, &s); !ok || err != nil {
		return ""
	}
	return s
}

// SetField encodes v into data[name].
func (o *Object) SetField(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", name, err)
	}
	if o.Data == nil {
		o.Data = map[string]json.RawMessage{}
	}
	o.Data[name] = raw
	return nil
}

// CloneData returns a shallow copy of the data map.
func (o *Object) CloneData() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(o.Data)+2)
	for k, v := range o.Data {
		out[k] = v
	}
	return out
}

// Client is an HTTP client for the record service.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: DefaultTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Component(logging.OrDiscard(c.logger), "remote")
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetObject fetches the record with the given id.
func (c *Client) GetObject(ctx context.Context, id string) (*Object, error) {
	var obj Object
	if err := c.do(ctx, "get record", http.MethodGet, "/"+id, nil, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// PatchObject replaces the data object of the record with the given id.
func (c *Client) PatchObject(ctx context.Context, id string, data map[string]json.RawMessage) (*Object, error) {
	body := struct {
		Data map[string]json.RawMessage `json:"data"`
	}{Data: data}

	var obj Object
	if err := c.do(ctx, "patch record", http.MethodPatch, "/"+id, body, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// CreateObject creates a new record and returns it with its assigned id.
func (c *Client) CreateObject(ctx context.Context, name string, data map[string]json.RawMessage) (*Object, error) {
	body := Object{Name: name, Data: data}

	var obj Object
	if err := c.do(ctx, "create record", http.MethodPost, "", body, &obj); err != nil {
		return nil, err
	}
	if obj.ID == "" {
		return nil, errors.NewRemoteError("create record", 0, fmt.Errorf("response has no id"))
	}
	return &obj, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.NewRemoteError(op, 0, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.NewRemoteError(op, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return errors.NewTimeoutError(op, c.timeout).WithCause(err)
		}
		return errors.NewRemoteError(op, 0, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.logger.Debug("request finished", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	if err != nil {
		if isTimeout(ctx, err) {
			return errors.NewTimeoutError(op, c.timeout)
		}
		return errors.NewRemoteError(op, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		nf := errors.NewNotFoundError("record", strings.TrimPrefix(path, "/"))
		nf.Status = resp.StatusCode
		return nf
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewRemoteError(op, resp.StatusCode, fmt.Errorf("%s", snippet(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.NewRemoteError(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}

// IsRetryable reports whether a failed request may succeed if repeated:
// timeouts, transport failures, rate limiting and server errors.
func IsRetryable(err error) bool {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Type {
	case errors.ErrorTypeTimeout:
		return true
	case errors.ErrorTypeRemote:
		code := appErr.Status
		return code == 0 || code == http.StatusTooManyRequests || code >= 500
	}
	return false
}
