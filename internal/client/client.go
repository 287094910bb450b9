// Package client is a typed HTTP client for the StreakedIn REST API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/api/respond"
	"github.com/streakedin/streakedin/internal/config"
	"github.com/streakedin/streakedin/internal/model"
	"github.com/streakedin/streakedin/internal/services"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

// APIError carries a non-2xx response body.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404s.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	http *resty.Client
}

// Option customises a Client.
type Option func(*resty.Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRetries retries transport errors and 5xx responses n times.
func WithRetries(n int) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(n).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	}
}

// New constructs a Client for baseURL. token may be empty for sign-in calls.
func New(baseURL, token string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second).
		SetError(&respond.ErrorResponse{})
	if token != "" {
		rc.SetAuthToken(token)
	}
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// NewWithDevMode uses the local development key; the server must run with DEV_MODE.
func NewWithDevMode(baseURL string, opts ...Option) *Client {
	return New(baseURL, config.DevAPIKey, opts...)
}

// SetToken replaces the bearer credential.
func (c *Client) SetToken(token string) { c.http.SetAuthToken(token) }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
		if e, ok := resp.Error().(*respond.ErrorResponse); ok && e.Message != "" {
			apiErr.Message = e.Message
			apiErr.Field = e.Field
		}
		return apiErr
	}
	return nil
}

// ---- auth ----

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a session and adopts its token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*services.Session, error) {
	var sess services.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", credentials{email, password}, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// SignUp registers a user and adopts the returned token.
func (c *Client) SignUp(ctx context.Context, email, password string) (*services.Session, error) {
	var sess services.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", credentials{email, password}, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ---- goals ----

func (c *Client) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	var out struct {
		Goals []*model.Goal `json:"goals"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/goals", nil, &out); err != nil {
		return nil, err
	}
	return out.Goals, nil
}

func (c *Client) CreateGoal(ctx context.Context, in services.GoalInput) (*model.Goal, error) {
	var g model.Goal
	if err := c.do(ctx, http.MethodPost, "/api/goals", in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) UpdateGoal(ctx context.Context, goalID string, p model.GoalPatch) (*model.Goal, error) {
	var g model.Goal
	if err := c.do(ctx, http.MethodPatch, "/api/goals/"+goalID, p, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) DeleteGoal(ctx context.Context, goalID string) error {
	return c.do(ctx, http.MethodDelete, "/api/goals/"+goalID, nil, nil)
}

// ---- tasks ----

func (c *Client) ListTasks(ctx context.Context) ([]*model.Task, error) {
	var out struct {
		Tasks []*model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in services.TaskInput) (*model.Task, error) {
	var t model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, p model.TaskPatch) (*model.Task, error) {
	var t model.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+taskID, p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CompleteTask marks a task done.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (*model.Task, error) {
	done := true
	return c.UpdateTask(ctx, taskID, model.TaskPatch{Completed: &done})
}

// ---- reminders ----

func (c *Client) ListReminders(ctx context.Context) ([]*model.Reminder, error) {
	var out struct {
		Reminders []*model.Reminder `json:"reminders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/reminders", nil, &out); err != nil {
		return nil, err
	}
	return out.Reminders, nil
}

type promptBody struct {
	Prompt string `json:"prompt"`
}

// GenerateReminder returns a draft without saving it.
func (c *Client) GenerateReminder(ctx context.Context, prompt string) (*ai.Result[ai.ReminderDraft], error) {
	var res ai.Result[ai.ReminderDraft]
	if err := c.do(ctx, http.MethodPost, "/api/reminders/generate", promptBody{prompt}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GenerateGoal returns a draft without saving it.
func (c *Client) GenerateGoal(ctx context.Context, prompt string) (*ai.Result[ai.GoalDraft], error) {
	var res ai.Result[ai.GoalDraft]
	if err := c.do(ctx, http.MethodPost, "/api/goals/generate", promptBody{prompt}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ---- chat ----

func (c *Client) CreateChatSession(ctx context.Context, title string) (*model.ChatSession, error) {
	var cs model.ChatSession
	if err := c.do(ctx, http.MethodPost, "/api/chat/sessions", map[string]string{"title": title}, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (c *Client) SendMessage(ctx context.Context, sessionID, content string) (*services.SendResult, error) {
	var res services.SendResult
	path := "/api/chat/sessions/" + sessionID + "/messages"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"content": content}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ---- insights ----

func (c *Client) Stats(ctx context.Context) (*model.UserStats, error) {
	var st model.UserStats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Analytics(ctx context.Context, days int) ([]*model.AnalyticsEntry, error) {
	var out struct {
		Analytics []*model.AnalyticsEntry `json:"analytics"`
	}
	path := fmt.Sprintf("/api/analytics?days=%d", days)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Analytics, nil
}

func (c *Client) AIStatus(ctx context.Context) (*ai.BreakerStatus, error) {
	var st ai.BreakerStatus
	if err := c.do(ctx, http.MethodGet, "/api/ai/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Health reports the server's aggregate status string.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
