// Package llm is the model-streaming collaborator boundary: it sends a
// message list to an OpenAI-compatible chat completion endpoint and
// yields the response as a stream of text fragments. The provider is
// consumed as a black box; everything here is transport.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrMissingAPIKey indicates the provider key was not configured. The
// conversational feature degrades to a disabled state; audit, redaction
// and export remain fully functional.
var ErrMissingAPIKey = errors.New("model provider API key not configured")

// Message is one chat message in the outgoing sequence.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds provider settings. BaseURL defaults to the DeepSeek
// endpoint, which speaks the OpenAI chat-completions protocol.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns provider defaults for the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.deepseek.com/v1",
		Model:   "deepseek-chat",
		Timeout: 5 * time.Minute,
	}
}

// Client streams chat completions over SSE.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client with the given config. Zero-value fields
// fall back to defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: slog.Default(),
	}
}

// Enabled reports whether the client has a provider key configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// request/response wire types for the chat-completions protocol.

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamChat sends the message list and returns a channel of incremental
// content fragments plus an error channel. Both channels are closed when
// the stream ends. Transport and auth failures arrive on the error
// channel; a stream that ends cleanly delivers nothing there.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	contentCh := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(contentCh)
		defer close(errCh)

		if c.apiKey == "" {
			errCh <- ErrMissingAPIKey
			return
		}

		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
			defer cancel()
		}

		start := time.Now()
		c.logger.Debug("llm stream starting", "model", c.model, "messages", len(messages))

		// Retry only covers setup failures and rate limits before the
		// stream begins; once tokens flow there is no replay.
		const maxRetries = 3
		var lastErr error

		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}

			body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: true})
			if err != nil {
				errCh <- fmt.Errorf("marshal request: %w", err)
				return
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
			if err != nil {
				errCh <- fmt.Errorf("create request: %w", err)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("Accept", "text/event-stream")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				lastErr = fmt.Errorf("request failed: %w", err)
				continue
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				b, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				lastErr = fmt.Errorf("rate limit exceeded (429): %s", strings.TrimSpace(string(b)))
				continue
			}

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				errCh <- fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
				return
			}

			err = c.consumeStream(ctx, resp.Body, contentCh)
			resp.Body.Close()
			if err != nil {
				c.logger.Warn("llm stream failed", "error", err, "elapsed", time.Since(start))
				errCh <- err
			} else {
				c.logger.Debug("llm stream completed", "elapsed", time.Since(start))
			}
			return
		}

		c.logger.Warn("llm stream retries exhausted", "error", lastErr, "elapsed", time.Since(start))
		errCh <- fmt.Errorf("max retries exceeded: %w", lastErr)
	}()

	return contentCh, errCh
}

// consumeStream scans SSE frames and forwards content deltas until the
// terminator, an error frame, or context cancellation.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, contentCh chan<- string) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("provider error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			select {
			case contentCh <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read: %w", err)
	}
	return nil
}
