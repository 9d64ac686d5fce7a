// Package supabase talks to a Supabase project: PostgREST for rows, GoTrue for auth and the
// Realtime websocket for change notifications.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard/internal/apperrors"
)

// DefaultTable is the table the dashboard and the messaging bot share.
const DefaultTable = "transacoes"

// Options configures a Client.
type Options struct {
	URL        string
	AnonKey    string
	ServiceKey string // Optional; used for calls made without a user token
	Table      string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client is a Supabase project client.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	table      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient fails when the project URL or the anon key is missing.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("%w: supabase url is required", apperrors.ErrConfig)
	}
	if strings.TrimSpace(opts.AnonKey) == "" {
		return nil, fmt.Errorf("%w: supabase anon key is required", apperrors.ErrConfig)
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, fmt.Errorf("%w: invalid supabase url: %v", apperrors.ErrConfig, err)
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.URL, "/"),
		anonKey:    opts.AnonKey,
		serviceKey: opts.ServiceKey,
		table:      opts.Table,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     opts.Logger.With(slog.String("component", "supabase")),
	}, nil
}

// Table returns the transactions table name.
func (c *Client) Table() string {
	return c.table
}

// bearer picks the token for the Authorization header: the user's token, else the service key, else the anon key.
func (c *Client) bearer(accessToken string) string {
	switch {
	case accessToken != "":
		return accessToken
	case c.serviceKey != "":
		return c.serviceKey
	default:
		return c.anonKey
	}
}

// request is one call against the project.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	accessToken string
	prefer      string
}

// apiError is the union of the PostgREST and GoTrue error bodies.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer(req.accessToken))
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstream, req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, req)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%w: failed to decode %s response: %v", apperrors.ErrUpstream, req.path, err)
	}
	return nil
}

// HTTPError is a non-2xx answer from the project. It unwraps to an apperrors sentinel.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s %s: %d %s", e.kind, e.Method, e.Path, e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

func (c *Client) statusError(resp *http.Response, req request) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	msg := apiErr.text()
	if msg == "" {
		msg = resp.Status
	}

	c.logger.Debug("Supabase request failed",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.String("message", msg))

	code := apiErr.ErrorCode
	if code == "" {
		code = apiErr.Error
	}
	httpErr := &HTTPError{
		Method:  req.method,
		Path:    req.path,
		Status:  resp.StatusCode,
		Code:    code,
		Message: msg,
		kind:    apperrors.ErrUpstream,
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		httpErr.kind = apperrors.ErrUnauthorized
	case http.StatusNotFound:
		httpErr.kind = apperrors.ErrNotFound
	case http.StatusConflict:
		httpErr.kind = apperrors.ErrDuplicate
	}
	return httpErr
}
