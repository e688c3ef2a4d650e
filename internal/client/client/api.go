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

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/netx"
)

type APIClient struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	tokens models.Tokens
	// onTokens is called whenever the token pair changes.
	onTokens func(models.Tokens)
}

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option { return func(a *APIClient) { a.http = c } }

// WithTokens seeds previously persisted credentials.
func WithTokens(t models.Tokens) Option { return func(a *APIClient) { a.tokens = t } }

func WithTokenListener(fn func(models.Tokens)) Option {
	return func(a *APIClient) { a.onTokens = fn }
}

func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *APIClient) Tokens() models.Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *APIClient) setTokens(t models.Tokens) {
	c.mu.Lock()
	c.tokens = t
	fn := c.onTokens
	c.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

// WebSocketURL returns the realtime endpoint with the current access token.
func (c *APIClient) WebSocketURL() (string, error) {
	t := c.Tokens()
	if t.AccessToken == "" {
		return "", ErrNotLoggedIn
	}
	return netx.WebSocketURL(c.baseURL, "/ws", url.Values{common.AccessTokenQueryParam: {t.AccessToken}})
}

func (c *APIClient) send(ctx context.Context, method, path string, body, out any, token string) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// authed sends with the access token and, on a 401, refreshes once and
// retries.
func (c *APIClient) authed(ctx context.Context, method, path string, body, out any) error {
	t := c.Tokens()
	if t.AccessToken == "" {
		return ErrNotLoggedIn
	}

	err := c.send(ctx, method, path, body, out, t.AccessToken)
	if !errors.Is(err, ErrUnauthorized) || t.RefreshToken == "" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}
	return c.send(ctx, method, path, body, out, c.Tokens().AccessToken)
}

func (c *APIClient) Register(ctx context.Context, userName, email, password, profession string) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	body := map[string]string{"username": userName, "email": email, "password": password, "profession": profession}
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", body, &out, ""); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         models.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &out, ""); err != nil {
		return nil, err
	}
	c.setTokens(models.Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, UserID: out.User.ID})
	return &out.User, nil
}

// Refresh rotates the token pair using the stored refresh token.
func (c *APIClient) Refresh(ctx context.Context) error {
	t := c.Tokens()
	if t.RefreshToken == "" {
		return ErrNotLoggedIn
	}
	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": t.RefreshToken}, &out, ""); err != nil {
		return err
	}
	c.setTokens(models.Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, UserID: t.UserID})
	return nil
}

// Logout ends the server session and forgets local credentials even when
// the server call fails.
func (c *APIClient) Logout(ctx context.Context) error {
	err := c.authed(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setTokens(models.Tokens{})
	return err
}

func (c *APIClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authed(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) CreateTask(ctx context.Context, in models.NewTask) (*models.Task, error) {
	var t models.Task
	if err := c.authed(ctx, http.MethodPost, "/api/tasks/create", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *APIClient) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	path := "/api/tasks/list"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := c.authed(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *APIClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := c.authed(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *APIClient) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var out struct {
		Task models.Task `json:"task"`
	}
	if err := c.authed(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

func (c *APIClient) DeleteTask(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	if err := c.authed(ctx, http.MethodGet, "/api/tasks/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *APIClient) Upcoming(ctx context.Context) ([]models.UpcomingTask, error) {
	var out struct {
		Tasks []models.UpcomingTask `json:"tasks"`
	}
	if err := c.authed(ctx, http.MethodGet, "/api/tasks/upcoming", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *APIClient) Activities(ctx context.Context) ([]models.Activity, error) {
	var out []models.Activity
	if err := c.authed(ctx, http.MethodGet, "/api/activities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) ClearActivities(ctx context.Context) error {
	return c.authed(ctx, http.MethodDelete, "/api/activities", nil, nil)
}
