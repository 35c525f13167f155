package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"pdfqa/internal/domain"
)

// Client talks to an OpenAI-compatible /embeddings endpoint. Works against
// OpenAI and local Ollama alike. Requests are batched to amortize provider
// overhead; the same text always yields the same vector, which keeps
// retrieval deterministic.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIClient creates a client for the hosted OpenAI API. The key is
// read from the named environment variable.
func NewOpenAIClient(apiKeyEnv, model string, dimension, batchSize int) (*Client, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	return newClient(apiKey, model, "https://api.openai.com/v1", dimension, batchSize), nil
}

// NewOllamaClient creates a client for a local Ollama endpoint.
func NewOllamaClient(model, baseURL string, dimension, batchSize int) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return newClient("ollama", model, baseURL, dimension, batchSize)
}

// NewCompatibleClient creates a client for any OpenAI-compatible base URL.
func NewCompatibleClient(apiKey, model, baseURL string, dimension, batchSize int) *Client {
	return newClient(apiKey, model, baseURL, dimension, batchSize)
}

func newClient(apiKey, model, baseURL string, dimension, batchSize int) *Client {
	if dimension <= 0 {
		dimension = 384
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		batchSize: batchSize,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Embed generates embeddings for the given texts, one vector per input.
func (e *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vecs...)
	}

	return all, nil
}

func (e *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{Input: texts, Model: e.model}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.EmbeddingError{
			Err: fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, &domain.EmbeddingError{
			Err: fmt.Errorf("parse response (body: %s): %w", truncate(body, 200), err),
		}
	}
	if embResp.Error != nil {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("provider error: %s", embResp.Error.Message)}
	}

	vecs := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index >= 0 && data.Index < len(vecs) {
			vecs[data.Index] = data.Embedding
		}
	}
	for i, v := range vecs {
		if v == nil {
			return nil, &domain.EmbeddingError{Err: fmt.Errorf("missing embedding for input %d", i)}
		}
		if len(v) != e.dimension {
			return nil, &domain.EmbeddingError{
				Err: fmt.Errorf("dimension mismatch: expected %d, got %d", e.dimension, len(v)),
			}
		}
	}

	return vecs, nil
}

// Dimension returns the embedding vector dimension.
func (e *Client) Dimension() int { return e.dimension }

// ModelName returns the name of the embedding model.
func (e *Client) ModelName() string { return e.model }

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
