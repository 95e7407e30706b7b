package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"bizup-dashboard/internal/logger"
)

const maxResponseSize = 10 << 20

// Params are query parameters. Nil values (and nil pointers) are skipped.
type Params map[string]any

// Requester is what the resource APIs need from a client. *Client
// implements it; tests may substitute their own.
type Requester interface {
	Get(ctx context.Context, endpoint string, params Params, out any) error
	Post(ctx context.Context, endpoint string, body, out any) error
	Put(ctx context.Context, endpoint string, body, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
	PostFile(ctx context.Context, endpoint, filename string, r io.Reader, out any) error
}

// Client issues JSON requests against the external REST API. It makes a
// single attempt per call; there is no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logger.Logger
}

var _ Requester = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds every call, on top of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent("apiclient") }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, endpoint string, params Params, out any) error {
	if q := encodeParams(params); q != "" {
		endpoint += "?" + q
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, "", out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, "", out)
}

// PostFile uploads r as multipart form data under the field name "file".
func (c *Client) PostFile(ctx context.Context, endpoint, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return c.fail(ctx, http.MethodPost, endpoint, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return c.fail(ctx, http.MethodPost, endpoint, fmt.Errorf("read upload %s: %w", filename, err))
	}
	if err := mw.Close(); err != nil {
		return c.fail(ctx, http.MethodPost, endpoint, fmt.Errorf("close multipart body: %w", err))
	}
	return c.do(ctx, http.MethodPost, endpoint, &buf, mw.FormDataContentType(), out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	if body == nil {
		return c.do(ctx, method, endpoint, nil, "", out)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return c.fail(ctx, method, endpoint, fmt.Errorf("encode request body: %w", err))
	}
	return c.do(ctx, method, endpoint, bytes.NewReader(data), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	if err := c.send(ctx, method, endpoint, body, contentType, out); err != nil {
		return c.fail(ctx, method, endpoint, err)
	}
	return nil
}

func (c *Client) fail(ctx context.Context, method, endpoint string, err error) error {
	c.logger.WithRequestID(ctx).Error("API request failed",
		"method", method,
		"endpoint", endpoint,
		"error", err)
	return err
}

func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := logger.RequestIDFrom(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp, data),
		}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailMessage(payload.Detail); msg != "" {
			return msg
		}
		if msg := detailMessage(payload.Error); msg != "" {
			return msg
		}
	}
	return statusText(resp)
}

// detailMessage accepts a plain string or a list of {"msg": ...} entries
// as sent for request validation failures.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}

func encodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for key, v := range params {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				continue
			}
			v = rv.Elem().Interface()
		}
		values.Set(key, fmt.Sprint(v))
	}
	return values.Encode()
}
