package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	OpRewriteTitle = "rewrite_title"
	OpEnrich       = "enrich"
)

// ClaudeClient calls the Anthropic Messages API. It serves as the outline
// engine's title rewriter and detail enricher.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	// Stats records call latency per operation.
	Stats *LLMStats
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return &ClaudeClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		Stats: NewLLMStats(time.Hour),
	}
}

// WithBaseURL points the client at another Messages API endpoint.
func (c *ClaudeClient) WithBaseURL(u string) *ClaudeClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string {
	return c.model
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// RewriteTitle asks for a short learner-facing title for a topic body.
func (c *ClaudeClient) RewriteTitle(ctx context.Context, body, oldTitle string) (string, error) {
	text, err := c.complete(ctx, OpRewriteTitle, TitleSystemPrompt, BuildTitlePrompt(body, oldTitle), 64)
	if err != nil {
		return "", err
	}
	title, ok := ValidateTitle(text)
	if !ok {
		return "", fmt.Errorf("rejected title %q", truncate(text, 80))
	}
	return title, nil
}

// Enrich asks for a summary, keywords and a short outline of a topic.
func (c *ClaudeClient) Enrich(ctx context.Context, body, title string) (outline.Enrichment, error) {
	text, err := c.complete(ctx, OpEnrich, EnrichSystemPrompt, BuildEnrichPrompt(body, title), 1024)
	if err != nil {
		return outline.Enrichment{}, err
	}
	var en outline.Enrichment
	if err := json.Unmarshal([]byte(stripCodeBlock(text)), &en); err != nil {
		return outline.Enrichment{}, fmt.Errorf("parse enrichment json: %w (raw: %s)", err, truncate(text, 200))
	}
	if !ValidateEnrichment(&en) {
		return outline.Enrichment{}, fmt.Errorf("rejected enrichment for %q", title)
	}
	return en, nil
}

func (c *ClaudeClient) complete(ctx context.Context, op, system, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()
	if c.Stats != nil {
		c.Stats.Record(op, time.Since(start).Milliseconds())
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	for _, block := range apiResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from claude")
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StatusError is a non-200 answer from the Messages API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("claude api status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

// Transient reports whether the failure is a rate limit or server error.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Close releases resources.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
