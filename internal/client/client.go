// Package client is the REST API client shared by the web and terminal
// clients. Every call is bound to the caller's context and is made once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finance_tracker/internal/session"

	"github.com/tidwall/gjson"
)

// Client talks to the finance tracker API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration
type Config struct {
	BaseURL    string // Including the /api prefix
	Timeout    time.Duration
	HTTPClient *http.Client // Overrides Timeout when set
}

// New creates a new API client
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError is an error envelope returned by the API
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// UserMessage turns an error from the client into notification text
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNoToken):
		return session.NoTokenMessage
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	default:
		return "Could not reach the server, please try again"
	}
}

// do sends one request and returns the parsed envelope. Non-2xx responses
// and envelopes with status "error" become *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}

	if !gjson.ValidBytes(data) {
		if resp.StatusCode >= http.StatusBadRequest {
			return gjson.Result{}, &APIError{Status: resp.StatusCode}
		}
		return gjson.Result{}, fmt.Errorf("invalid response from %s %s", method, path)
	}
	envelope := gjson.ParseBytes(data)
	if resp.StatusCode >= http.StatusBadRequest || envelope.Get("status").String() == "error" {
		return envelope, envelopeError(resp.StatusCode, envelope)
	}
	return envelope, nil
}

func envelopeError(status int, envelope gjson.Result) *APIError {
	apiErr := &APIError{Status: status, Message: envelope.Get("message").String()}
	if errs := envelope.Get("errors"); errs.IsObject() {
		apiErr.Fields = map[string]string{}
		errs.ForEach(func(key, value gjson.Result) bool {
			apiErr.Fields[key.String()] = value.String()
			return true
		})
	}
	return apiErr
}

// authed is do with the session's token. Without a token no request is sent.
func (c *Client) authed(ctx context.Context, s *session.Session, method, path string, body any) (gjson.Result, error) {
	token, err := s.Token()
	if err != nil {
		return gjson.Result{}, err
	}
	return c.do(ctx, method, path, token, body)
}

func decodeData(envelope gjson.Result, out any) error {
	data := envelope.Get("data")
	if !data.Exists() {
		return errors.New("response has no data")
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
