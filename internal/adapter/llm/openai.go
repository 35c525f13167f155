package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"pdfqa/internal/domain"
)

// Client talks to an OpenAI-compatible /chat/completions endpoint. Works
// with OpenAI, Ollama, LocalAI, vLLM and the like. Generation is blocking;
// the caller bounds it through the request context.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient creates a generator client. The API key is read from apiKeyEnv;
// local providers commonly ignore it, so an unset variable is not an error.
func NewClient(baseURL, apiKeyEnv, model string, temperature float64, maxTokens int) *Client {
	return &Client{
		apiKey:      os.Getenv(apiKeyEnv),
		model:       model,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		temperature: temperature,
		maxTokens:   maxTokens,
		// No client-level timeout: the per-request context carries the
		// configured generation deadline.
		client: &http.Client{},
	}
}

// Generate produces a completion for the prompt.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []chatMessage{}
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &domain.GenerationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", &domain.GenerationError{Err: fmt.Errorf("generation timed out: %w", err)}
		}
		return "", &domain.GenerationError{Err: fmt.Errorf("connection failed: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &domain.GenerationError{
			Err: fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if chatResp.Error != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("provider error: %s", chatResp.Error.Message)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("empty response from model")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *Client) ModelName() string { return c.model }

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
