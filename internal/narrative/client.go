package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/omoide/internal/models"
	"go.uber.org/zap"
)

const systemInstruction = `You are a travel memory writer. You receive structured signals about a captured travel moment and write warm, specific, first-person-plural narrative content. Respond with a single JSON object and nothing else.`

// Client calls the external narrative model over HTTP. The model is a black
// box: one structured prompt in, one JSON object out. Any deviation from
// the response contract is treated as a failed call.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.RWMutex
	enabled bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets a logger for call diagnostics.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithAPIKey sets a bearer token for the model endpoint.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a narrative model client.
func NewClient(baseURL, model string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		enabled:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetEnabled toggles the client at runtime (config hot-reload).
func (c *Client) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Enabled reports whether model calls are attempted at all.
func (c *Client) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// IsAvailable probes the model endpoint with a short timeout.
func (c *Client) IsAvailable() bool {
	probe := &http.Client{Timeout: 2 * time.Second}
	resp, err := probe.Get(c.baseURL + "/")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate makes exactly one model call for the request and returns the
// validated narrative response. Every failure mode (transport, status,
// parse, schema) comes back as an error for the orchestrator to fall back
// on; Generate itself never degrades silently.
func (c *Client) Generate(ctx context.Context, req *models.SynthesisRequest, venue *models.VenueEnrichment, weather *models.WeatherSnapshot) (*Response, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("narrative model disabled")
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: BuildPrompt(req, venue, weather)},
		},
		Stream: false,
		Format: "json",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode model envelope: %w", err)
	}

	var out Response
	if err := json.Unmarshal([]byte(chat.Message.Content), &out); err != nil {
		return nil, fmt.Errorf("parse model content: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("model response rejected: %w", err)
	}
	return &out, nil
}
