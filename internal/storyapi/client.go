// Package storyapi talks to the remote story service that owns stories,
// users and favorites.
package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"snooze-web/internal/story"
)

const maxErrorBody = 64 << 10

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

// Client reads are retried on transport errors and 5xx answers; writes are
// sent exactly once so a story is never created twice.
type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *retryablehttp.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "storyapi"))
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		reads:   newHTTPClient(cfg.Timeout, cfg.RetryMax, logger),
		writes:  newHTTPClient(cfg.Timeout, 0, logger),
		logger:  logger,
	}
}

func newHTTPClient(timeout time.Duration, retryMax int, logger *zap.Logger) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = timeout
	c.RetryMax = retryMax
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = leveledLogger{logger.Sugar()}
	return c
}

func (c *Client) ListStories(ctx context.Context) ([]story.Story, error) {
	var resp storiesResponse
	if err := c.call(ctx, c.reads, "list_stories", http.MethodGet, "/stories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

func (c *Client) CreateStory(ctx context.Context, token string, ns story.NewStory) (story.Story, error) {
	var resp storyResponse
	req := createStoryRequest{Token: token, Story: ns}
	if err := c.call(ctx, c.writes, "create_story", http.MethodPost, "/stories", req, &resp); err != nil {
		return story.Story{}, err
	}
	return resp.Story, nil
}

func (c *Client) DeleteStory(ctx context.Context, token, storyID string) error {
	path := "/stories/" + url.PathEscape(storyID)
	return c.call(ctx, c.writes, "delete_story", http.MethodDelete, path, tokenRequest{Token: token}, nil)
}

func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return c.call(ctx, c.writes, "add_favorite", http.MethodPost, favoritePath(username, storyID), tokenRequest{Token: token}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return c.call(ctx, c.writes, "remove_favorite", http.MethodDelete, favoritePath(username, storyID), tokenRequest{Token: token}, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*story.Viewer, error) {
	var resp authResponse
	req := authRequest{User: credentials{Username: username, Password: password}}
	if err := c.call(ctx, c.writes, "login", http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	return resp.User.viewer(resp.Token), nil
}

func (c *Client) Signup(ctx context.Context, name, username, password string) (*story.Viewer, error) {
	var resp authResponse
	req := authRequest{User: credentials{Name: name, Username: username, Password: password}}
	if err := c.call(ctx, c.writes, "signup", http.MethodPost, "/signup", req, &resp); err != nil {
		return nil, err
	}
	return resp.User.viewer(resp.Token), nil
}

// Viewer reloads a user with a previously issued token.
func (c *Client) Viewer(ctx context.Context, token, username string) (*story.Viewer, error) {
	var resp userResponse
	path := "/users/" + url.PathEscape(username) + "?token=" + url.QueryEscape(token)
	if err := c.call(ctx, c.reads, "get_user", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User.viewer(token), nil
}

func favoritePath(username, storyID string) string {
	return "/users/" + url.PathEscape(username) + "/favorites/" + url.PathEscape(storyID)
}

func (c *Client) call(ctx context.Context, hc *retryablehttp.Client, op, method, path string, in, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		remoteRequestsTotal.WithLabelValues(op, outcome).Inc()
		remoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var body interface{}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			outcome = "encode_error"
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = data
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		outcome = "network_error"
		return fmt.Errorf("%s: %w: %v", op, story.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		outcome = "network_error"
		c.logger.Warn("remote request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %v", op, story.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "server_error"
		serr := decodeServerError(resp)
		c.logger.Warn("remote request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", serr.Message),
		)
		return fmt.Errorf("%s: %w", op, serr)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("%s: %w", op, &story.ServerError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()})
	}
	return nil
}

func decodeServerError(resp *http.Response) *story.ServerError {
	serr := &story.ServerError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return serr
	}
	var payload errorResponse
	if json.Unmarshal(data, &payload) == nil && payload.Error.Message != "" {
		serr.Message = payload.Error.Message
		return serr
	}
	serr.Message = string(bytes.TrimSpace(data))
	return serr
}

// leveledLogger routes retryablehttp's logging through zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
