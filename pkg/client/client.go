// Package client talks to the health tracker HTTP API and keeps a local
// copy of the caller's tracks.
package client

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
	"sync"
	"time"

	"healthtracker/internal/models"
)

// DefaultBaseURL is where the API listens by default.
const DefaultBaseURL = "http://localhost:5000"

// ErrUnauthorized is returned when the API rejects the token (401 or 403).
// Callers should drop stored credentials and log in again.
var ErrUnauthorized = errors.New("session expired or invalid, please log in again")

// APIError is a non-2xx response other than 401/403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.Status, e.Message)
}

// Client is an HTTP client for the health tracker API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token used for /tracks and /auth/verify.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error) {
	req := models.RegisterRequest{Username: username, Email: email, Password: password}
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	req := models.LoginRequest{Email: email, Password: password}
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Verify checks the current token and returns the user fields it carries.
func (c *Client) Verify(ctx context.Context) (*models.PublicUser, error) {
	var out struct {
		User models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/verify", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTracks returns all of the caller's tracks, newest date first.
func (c *Client) ListTracks(ctx context.Context) ([]models.TrackResponse, error) {
	var out []models.TrackResponse
	if err := c.do(ctx, http.MethodGet, "/tracks", true, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.TrackResponse{}
	}
	return out, nil
}

// GetTracksForDate returns zero or one track for date.
func (c *Client) GetTracksForDate(ctx context.Context, date string) ([]models.TrackResponse, error) {
	var out []models.TrackResponse
	if err := c.do(ctx, http.MethodGet, "/tracks/"+url.PathEscape(date), true, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.TrackResponse{}
	}
	return out, nil
}

// UpsertTrack creates or replaces the track for date.
func (c *Client) UpsertTrack(ctx context.Context, date string, in models.TrackInput) (*models.TrackResponse, error) {
	var out models.TrackResponse
	if err := c.do(ctx, http.MethodPut, "/tracks/"+url.PathEscape(date), true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrack removes the track for date. A missing track is not an error.
func (c *Client) DeleteTrack(ctx context.Context, date string) error {
	return c.do(ctx, http.MethodDelete, "/tracks/"+url.PathEscape(date), true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, auth)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// responseError turns an error response into ErrUnauthorized or *APIError.
// A 401 from login is a credentials error, not an expired session.
func responseError(resp *http.Response, auth bool) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(bodyBytes))
	if json.Unmarshal(bodyBytes, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	if auth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
