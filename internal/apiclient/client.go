// Package apiclient talks to a remote FoxxTalk REST API. Client implements
// the session backend (login, code exchange, revocation) and the content
// operations the web frontend needs, so the frontend can run against an API
// served by another process.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/session"
)

const defaultTimeout = 15 * time.Second

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the API mounted at baseURL (for example
// "https://foxxtalk.example/api"). A nil hc gets a traced client with a
// 15 second timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// request describes one API call.
type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, token string, v any) (request, error) {
	req := request{method: method, path: path, token: token}
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return req, fmt.Errorf("marshal request: %w", err)
		}
		req.body = bytes.NewReader(b)
		req.contentType = "application/json"
	}
	return req, nil
}

// statusError is a non-2xx answer.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("api returned %d", e.status)
	}
	return fmt.Sprintf("api returned %d: %s", e.status, e.message)
}

// send performs req and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx answers become *statusError carrying the message or detail field.
func (c *Client) send(ctx context.Context, req request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, message: errorMessage(body)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return ""
}

// contentError converts a failed call into the content package's error
// taxonomy so callers handle remote and in-process failures alike.
func contentError(err error) error {
	if err == nil {
		return nil
	}
	var se *statusError
	if !errors.As(err, &se) {
		return &content.Error{Kind: content.ErrUnavailable, Message: "The content service is unavailable. Please try again."}
	}
	kind := content.KindForStatus(se.status)
	if kind == nil {
		return err
	}
	msg := se.message
	if msg == "" {
		msg = kind.Error()
	}
	return &content.Error{Kind: kind, Message: msg}
}

// backendError converts a failed authentication call into a
// *session.BackendError. Transport failures are returned as-is so the login
// form falls back to its generic message.
func backendError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	be := &session.BackendError{Status: se.status, Message: se.message}
	switch se.status {
	case http.StatusUnauthorized:
		be.Err = session.ErrInvalidCredentials
	case http.StatusNotFound:
		be.Err = session.ErrRedirectDisabled
	}
	return be
}

// Login implements session.Backend.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.Grant, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/login", "", api.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, err
	}
	var resp api.LoginResponse
	if err := c.send(ctx, req, &resp); err != nil {
		return nil, backendError(err)
	}
	grant := &session.Grant{Token: resp.Token}
	if id := resp.User.ID.String(); id != "" {
		grant.User = &session.User{ID: id, Email: resp.User.Email, Name: resp.User.Name}
	}
	return grant, nil
}

// ExchangeCode implements session.Backend.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*session.Grant, error) {
	if code == "" {
		return nil, session.ErrMissingCode
	}
	req, err := jsonRequest(http.MethodPost, "/auth/callback", "", api.CallbackRequest{Code: code, CodeVerifier: verifier})
	if err != nil {
		return nil, err
	}
	var resp api.CallbackResponse
	if err := c.send(ctx, req, &resp); err != nil {
		return nil, backendError(err)
	}
	return &session.Grant{Token: resp.AccessToken}, nil
}

// Revoke implements session.Revoker. A token the API already rejects is
// treated as revoked.
func (c *Client) Revoke(ctx context.Context, token string) error {
	err := c.send(ctx, request{method: http.MethodPost, path: "/auth/logout", token: token}, nil)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnauthorized {
		return nil
	}
	return err
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}
