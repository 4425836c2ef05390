package gemini

import (
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
	"unicode/utf8"

	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY not set")
	ErrBlocked       = errors.New("prompt blocked by the model")
	ErrEmptyResponse = errors.New("model returned empty content")
)

// APIError is a non-200 answer from the generateContent endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// Attachment is a file sent inline with the prompt
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call
type Request struct {
	Feature           string // used for logging only
	SystemInstruction string
	Text              string
	Attachments       []Attachment
	Temperature       *float32
	Grounding         bool
}

// Response is the generated text and any citations found
type Response struct {
	Text    string
	Sources []models.Source
}

// Config configures a Client
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Grounding bool // global switch; when false requests never use web search
	Timeout   time.Duration
}

// Client wraps the Gemini API. Grounded calls use REST because the Go SDK
// does not expose the search tool; the rest go through the SDK when available.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sdk        *genai.Client
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for REST calls
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSDKClient sets the genai client used for ungrounded calls
func WithSDKClient(sdk *genai.Client) ClientOption {
	return func(c *Client) {
		c.sdk = sdk
	}
}

// NewClient creates a client. It never dials; errors surface on Generate.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSDKClient builds the genai client for the given key
func NewSDKClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY not set")
	}
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}

// Close releases the SDK client
func (c *Client) Close() error {
	if c.sdk != nil {
		return c.sdk.Close()
	}
	return nil
}

// Generate sends the request and returns the model answer
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	grounded := req.Grounding && c.cfg.Grounding
	start := time.Now()

	var (
		resp *Response
		err  error
	)
	if !grounded && c.sdk != nil {
		resp, err = c.generateSDK(ctx, req)
	} else {
		resp, err = c.generateREST(ctx, req, grounded)
	}

	attrs := []any{
		"feature", req.Feature,
		"grounded", grounded,
		"attachments", len(req.Attachments),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		logger.Error(ctx, "gemini generation failed", append(attrs, "error", err)...)
		return nil, err
	}
	logger.Info(ctx, "gemini generation completed", append(attrs, "sources", len(resp.Sources))...)
	return resp, nil
}

func (c *Client) generateSDK(ctx context.Context, req Request) (*Response, error) {
	model := c.sdk.GenerativeModel(c.cfg.Model)
	if req.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}

	parts := make([]genai.Part, 0, len(req.Attachments)+1)
	for _, a := range req.Attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}
	parts = append(parts, genai.Text(req.Text))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return nil, fmt.Errorf("%w: %v", ErrBlocked, blocked)
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	var sources []models.Source
	if candidate.CitationMetadata != nil {
		for _, cs := range candidate.CitationMetadata.CitationSources {
			if cs != nil && cs.URI != nil {
				sources = append(sources, models.Source{URL: *cs.URI})
			}
		}
	}

	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}
	return &Response{Text: text.String(), Sources: normalizeSources(sources)}, nil
}

func (c *Client) generateREST(ctx context.Context, req Request, grounded bool) (*Response, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := buildRequestBody(req, grounded)
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: truncate(string(bodyBytes), 1000)}
	}

	var apiResp generateResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return parseResponse(&apiResp)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
