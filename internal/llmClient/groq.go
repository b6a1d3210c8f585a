package llmclient

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
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	defaultGroqBaseURL = "https://api.groq.com/openai/v1/chat/completions"
)

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string

	rlMu      sync.RWMutex
	rlLast    RateLimitHeaders
	rlHasLast bool
	rlHandler RateLimitHeaderHandler
}

// NewGroqClient creates a Groq client. If apiKey is empty, it falls back to GROQ_API_KEY env var.
func NewGroqClient(apiKey, model string) *GroqClient {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGroqModel
	}
	return &GroqClient{
		http: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGroqBaseURL,
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func (g *GroqClient) WithBaseURL(u string) *GroqClient {
	if strings.TrimSpace(u) != "" {
		g.baseURL = strings.TrimSpace(u)
	}
	return g
}

func (g *GroqClient) Name() string { return "Groq:" + g.model }
func (g *GroqClient) Close() error { return nil }

func (g *GroqClient) SetRateLimitHeaderHandler(handler RateLimitHeaderHandler) {
	g.rlMu.Lock()
	defer g.rlMu.Unlock()
	g.rlHandler = handler
}

func (g *GroqClient) LastRateLimitHeaders() (RateLimitHeaders, bool) {
	g.rlMu.RLock()
	defer g.rlMu.RUnlock()
	return g.rlLast, g.rlHasLast
}

type groqChatReq struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText sends the prompt as a single user message.
func (g *GroqClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := groqChatReq{
		Model:       g.model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: 0.9,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewPermanentError(0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", NewPermanentError(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", NewPermanentError(0, err)
		}
		return "", NewPermanentError(0, fmt.Errorf("groq: send request: %w", err))
	}
	defer resp.Body.Close()
	g.recordRateLimitHeaders(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		err := fmt.Errorf("groq: unexpected status %s: %s", resp.Status, string(body))
		return "", &ServiceError{Class: classifyStatus(resp.StatusCode), StatusCode: resp.StatusCode, Err: err}
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", NewPermanentError(resp.StatusCode, fmt.Errorf("groq: decode response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func (g *GroqClient) recordRateLimitHeaders(h http.Header) {
	parsed, ok := parseGroqRateLimitHeaders(h)
	if !ok {
		return
	}
	g.rlMu.Lock()
	g.rlLast = parsed
	g.rlHasLast = true
	handler := g.rlHandler
	g.rlMu.Unlock()
	if handler != nil {
		handler(parsed)
	}
}
