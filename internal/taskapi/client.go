package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Status values are produced by the remote store and treated opaquely,
// except for the active-task filter.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task is a remote to-do item. Title is the only field the matcher compares.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Active reports whether the task should appear in a task listing.
func (t Task) Active() bool {
	return t.Status == StatusPending || t.Status == StatusInProgress
}

// Client talks to the remote task API. Every failure, transport or non-2xx,
// collapses to ok=false so callers surface a uniform "operation unavailable"
// outcome and no transport detail leaks to users.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Authenticate exchanges credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, bool) {
	payload := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", payload, &out); err != nil {
		log.Printf("task api: authenticate failed for %s: %v", email, err)
		return "", false
	}
	if out.Token == "" {
		return "", false
	}
	return out.Token, true
}

// List fetches the user's tasks in store order.
func (c *Client) List(ctx context.Context, token string) ([]Task, bool) {
	var out struct {
		Data []Task `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/my-tasks", token, nil, &out); err != nil {
		log.Printf("task api: list failed: %v", err)
		return nil, false
	}
	return out.Data, true
}

// Create adds a task with the given title.
func (c *Client) Create(ctx context.Context, title, token string) (Task, bool) {
	payload := map[string]string{"title": title}
	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks", token, payload, &out); err != nil {
		log.Printf("task api: create %q failed: %v", title, err)
		return Task{}, false
	}
	return out, true
}

// PatchStatus moves a task to the given status (completed or in_progress).
func (c *Client) PatchStatus(ctx context.Context, taskID, status, token string) (Task, bool) {
	payload := map[string]string{"status": status}
	var out Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+taskID, token, payload, &out); err != nil {
		log.Printf("task api: patch %s -> %s failed: %v", taskID, status, err)
		return Task{}, false
	}
	return out, true
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, taskID, token string) bool {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+taskID, token, nil, nil); err != nil {
		log.Printf("task api: delete %s failed: %v", taskID, err)
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("task api status %d: %s", res.StatusCode, string(detail))
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
