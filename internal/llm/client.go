package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/classora/classora-backend/internal/model"
)

// UpstreamError reports a failure of the hosted completion API. Message is
// safe to surface to callers: transport errors are replaced with a generic
// description and the raw error (which can embed URLs and headers) only
// goes to the log.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream: %s", e.Message)
	}
	return fmt.Sprintf("upstream (%d): %s", e.Status, e.Message)
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a completion client. timeout bounds each outbound
// call; zero means no client-side timeout (the request context still
// applies, so a disconnecting caller cancels the upstream call).
func NewClient(baseURL, apiKey, modelID string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      modelID,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "llm_client").Logger(),
	}
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []model.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// errorBody is the error envelope OpenAI-compatible providers return on
// non-200 responses.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat performs a single blocking completion and returns the assistant text.
func (c *Client) Chat(ctx context.Context, messages []model.ChatMessage, params model.CompletionParams) (string, error) {
	resp, err := c.send(ctx, messages, params, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Error().Err(err).Msg("Malformed completion response")
		return "", &UpstreamError{Message: "malformed completion response"}
	}
	if len(out.Choices) == 0 {
		return "", &UpstreamError{Message: "completion returned no choices"}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// ChatStream performs a streaming completion, sending content deltas to
// chunks one at a time as they arrive. The channel is closed when the
// stream ends, whether normally or with an error.
func (c *Client) ChatStream(ctx context.Context, messages []model.ChatMessage, params model.CompletionParams, chunks chan<- string) error {
	defer close(chunks)

	resp, err := c.send(ctx, messages, params, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.log.Warn().Err(err).Msg("Skipping malformed stream chunk")
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		select {
		case chunks <- chunk.Choices[0].Delta.Content:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Error().Err(err).Msg("Completion stream read failed")
		return &UpstreamError{Message: "completion stream interrupted"}
	}
	return nil
}

// send issues the completion request and maps failures to UpstreamError.
func (c *Client) send(ctx context.Context, messages []model.ChatMessage, params model.CompletionParams, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Error().Err(err).Msg("Completion request failed")
		return nil, &UpstreamError{Message: "completion request failed"}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg := fmt.Sprintf("completion API returned status %d", resp.StatusCode)
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		c.log.Error().Int("status", resp.StatusCode).Str("message", msg).Msg("Completion API error")
		return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
	}
	return resp, nil
}
