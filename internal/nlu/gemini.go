// Package nlu extracts a task-management intent from a free-text message
// using the Gemini API. Any failure degrades to IntentUnknown so the dialog
// layer never has to handle an NLU error.
package nlu

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

// Intent is the user's classified goal for a message.
type Intent string

const (
	IntentCreateTask     Intent = "create_task"
	IntentCompleteTask   Intent = "complete_task"
	IntentMarkInProgress Intent = "mark_in_progress"
	IntentDeleteTask     Intent = "delete_task"
	IntentListTasks      Intent = "list_tasks"
	IntentGreeting       Intent = "greeting"
	IntentThanks         Intent = "thanks"
	IntentUnknown        Intent = "unknown"
)

// Result is the structured outcome of analyzing one message.
type Result struct {
	Intent   Intent `json:"intent"`
	TaskName string `json:"task_name"`
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze classifies the message. It never fails: malformed responses,
// transport errors and unrecognized intents all collapse to IntentUnknown.
func (c *Client) Analyze(ctx context.Context, message string) Result {
	raw, err := c.generate(ctx, analysisPrompt(message))
	if err != nil {
		log.Printf("nlu: gemini call failed: %v", err)
		return Result{Intent: IntentUnknown}
	}

	var parsed struct {
		Intent   string  `json:"intent"`
		TaskName *string `json:"task_name"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		log.Printf("nlu: unparseable analysis %q: %v", raw, err)
		return Result{Intent: IntentUnknown}
	}

	res := Result{Intent: normalizeIntent(parsed.Intent)}
	if parsed.TaskName != nil {
		res.TaskName = strings.TrimSpace(*parsed.TaskName)
	}
	return res
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("gemini status %d: %s", res.StatusCode, string(detail))
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func normalizeIntent(s string) Intent {
	switch Intent(strings.TrimSpace(strings.ToLower(s))) {
	case IntentCreateTask, IntentCompleteTask, IntentMarkInProgress,
		IntentDeleteTask, IntentListTasks, IntentGreeting, IntentThanks:
		return Intent(strings.TrimSpace(strings.ToLower(s)))
	default:
		return IntentUnknown
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
