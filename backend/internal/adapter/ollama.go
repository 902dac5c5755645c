// Package adapter wraps the local inference backend. The backend is an
// Ollama-compatible HTTP service consumed as a black box; the only
// guarantee is the client-imposed timeout.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"graphchat/backend/pkg/logger"

	"go.uber.org/zap"
)

// OllamaClient talks to the generate and tags endpoints of a local
// Ollama-compatible backend.
type OllamaClient struct {
	generateURL string
	tagsURL     string
	httpClient  *http.Client
	tagsTimeout time.Duration
	logger      *zap.Logger
}

// NewOllamaClient creates a client with a hard request timeout for
// generation and a short one for model discovery.
func NewOllamaClient(generateURL, tagsURL string, generateTimeout, tagsTimeout time.Duration) *OllamaClient {
	return &OllamaClient{
		generateURL: generateURL,
		tagsURL:     tagsURL,
		httpClient:  &http.Client{Timeout: generateTimeout},
		tagsTimeout: tagsTimeout,
		logger:      logger.Get(),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt to the backend and returns its answer text.
// Any transport failure, non-2xx status or undecodable body is an error;
// the caller decides how to surface it. Generate holds no locks and is
// safe to call while the chat document is unlocked.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("backend returned status %d", res.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode backend response: %w", err)
	}

	c.logger.Debug("backend generate completed",
		zap.String("model", model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_len", len(decoded.Response)))
	return decoded.Response, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels asks the backend which models it serves. Failures degrade to
// an empty list: the manual model list still works without a backend.
func (c *OllamaClient) ListModels(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, c.tagsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tagsURL, nil)
	if err != nil {
		return []string{}
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend tags unavailable", zap.Error(err))
		return []string{}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return []string{}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return []string{}
	}
	var decoded tagsResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return []string{}
	}

	models := []string{}
	for _, m := range decoded.Models {
		if m.Name != "" {
			models = append(models, m.Name)
		}
	}
	sort.Strings(models)
	return models
}
