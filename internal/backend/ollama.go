// Ollama generate-API client
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cmdai-tools/cmdai/internal/config"
)

type ollamaClient struct {
	url     string
	model   string
	prefix  string
	opts    options
}

// generateRequest is the body sent to the generate endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the subset of the generate response we consume.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []tagsModel `json:"models"`
}

type tagsModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

func newOllamaClient(cfg config.Config, o options) *ollamaClient {
	return &ollamaClient{
		url:    strings.TrimSuffix(cfg.URL, "/"),
		model:  cfg.Model,
		prefix: cfg.PromptPrefix,
		opts:   o,
	}
}

func (c *ollamaClient) Name() string {
	return config.BackendOllama
}

func (c *ollamaClient) Query(ctx context.Context, userText string) (string, error) {
	prompt := userText
	if c.prefix != "" {
		prompt = c.prefix + "\n\n" + userText
	}

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Timeout: c.opts.timeout}
		}
		return "", &UnreachableError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = "no response body"
		}
		return "", &UnreachableError{
			URL:    c.url,
			Status: resp.Status,
			Err:    fmt.Errorf("%s", reason),
		}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Timeout: c.opts.timeout}
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// Whitespace-only output is a valid empty suggestion.
	return strings.TrimSpace(genResp.Response), nil
}

func (c *ollamaClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.tagsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: c.opts.timeout}
		}
		return nil, &UnreachableError{URL: c.tagsURL(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnreachableError{
			URL:    c.tagsURL(),
			Status: resp.Status,
			Err:    fmt.Errorf("unexpected status"),
		}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	models := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		models[i] = m.Name
	}
	return models, nil
}

// tagsURL derives the model-listing endpoint from the configured generate
// URL, e.g. http://host:11434/api/generate -> http://host:11434/api/tags.
func (c *ollamaClient) tagsURL() string {
	if i := strings.Index(c.url, "/api/"); i != -1 {
		return c.url[:i] + "/api/tags"
	}
	return c.url + "/api/tags"
}
