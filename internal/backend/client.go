// Package backend is the guarded CRUD gateway to the remote data store.
//
// The remote side speaks a PostgREST-style REST protocol (tables under
// /rest/v1/<table>, column filters like user_id=eq.<id>, Prefer headers on
// writes). The gateway is the only component that talks to the network, and
// it never touches the local cache.
//
// Misconfiguration is not an error path: when credentials are absent every
// operation returns ErrNotConfigured immediately, without a network call.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/storynest/storysync/internal/config"
)

// Table names on the remote backend.
const (
	tableChildren    = "children"
	tableVoices      = "voice_profiles"
	tableStories     = "stories"
	tablePreferences = "user_preferences"
)

// Client performs create/read/update against the remote backend.
type Client struct {
	baseURL string
	anonKey string
	token   string
	http    *http.Client
	logger  *log.Logger
}

// New creates a gateway client from backend settings.
//
// The configured-ness of the backend is decided here, once, from the
// injected settings; there is no process-wide flag. If logger is nil, a
// default logger writing to stderr is used.
func New(cfg config.Backend, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(os.Stderr, "[backend] ", log.LstdFlags)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		token:   cfg.AccessToken,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Configured reports whether the client has credentials to reach the backend.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// guard returns ErrNotConfigured when the backend cannot be reached by
// design. Every public operation calls this first.
func (c *Client) guard() error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return nil
}

// do performs one REST round trip. A nil out skips response decoding.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, prefer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Error{Code: CodeBadResponse, Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: err.Error()}
	}
	req.Header.Set("apikey", c.anonKey)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Code: CodeBadResponse, Message: fmt.Sprintf("failed to decode response: %v", err), Status: resp.StatusCode}
	}
	return nil
}

// decodeError maps a PostgREST error body to *Error. Unparseable bodies
// still produce a structured error carrying the HTTP status.
func decodeError(resp *http.Response) *Error {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = resp.Status
	}
	code := body.Code
	if code == "" {
		code = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	return &Error{Code: code, Message: msg, Status: resp.StatusCode}
}

// eq builds a PostgREST equality filter value.
func eq(v string) string { return "eq." + v }

// first unwraps the single-element array PostgREST returns for
// return=representation writes.
func first[T any](rows []T, table string) (*T, error) {
	if len(rows) == 0 {
		return nil, &Error{Code: CodeBadResponse, Message: fmt.Sprintf("%s write returned no rows", table)}
	}
	return &rows[0], nil
}
