package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultUpstreamURL is the chatbot service used when none is configured
const DefaultUpstreamURL = "https://luat-lao-dong.onrender.com/chat"

// UpstreamClient posts questions to an external chatbot HTTP service
type UpstreamClient struct {
	url    string
	client *http.Client
}

// NewUpstreamClient creates a client for url with the given request timeout
func NewUpstreamClient(url string, timeout time.Duration) *UpstreamClient {
	if strings.TrimSpace(url) == "" {
		url = DefaultUpstreamURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UpstreamClient{url: url, client: &http.Client{Timeout: timeout}}
}

// Answer sends {"question": ...} and reads "answer", falling back to "reply"
func (c *UpstreamClient) Answer(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream error: %d - %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out struct {
		Answer string `json:"answer"`
		Reply  string `json:"reply"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		answer = strings.TrimSpace(out.Reply)
	}
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
