package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sitebot/internal/domain"
)

const (
	defaultURL            = "http://localhost:11434"
	defaultModel          = "llama3.2:latest"
	defaultTimeout        = 30 * time.Second
	defaultTemperature    = 0.1
	defaultResponseLength = 50
)

// Config holds the classifier's options, fixed at construction. The defaults
// bias the model toward short, deterministic, low-creativity output.
type Config struct {
	URL            string // Ollama base URL
	Model          string
	Timeout        time.Duration
	Temperature    float64
	ResponseLength int // num_predict token cap
	Logger         *slog.Logger
}

// Classifier assigns a category to message bodies via an Ollama model.
// Safe for concurrent use.
type Classifier struct {
	url            string
	model          string
	temperature    float64
	responseLength int
	client         *http.Client
	logger         *slog.Logger
}

func New(cfg Config) *Classifier {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.ResponseLength <= 0 {
		cfg.ResponseLength = defaultResponseLength
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Classifier{
		url:            cfg.URL,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		responseLength: cfg.ResponseLength,
		client:         &http.Client{Timeout: cfg.Timeout},
		logger:         cfg.Logger,
	}
}

// Model returns the configured model identifier.
func (c *Classifier) Model() string { return c.model }

// Healthy checks that the Ollama endpoint is reachable.
func (c *Classifier) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// generateRequest matches the Ollama /api/generate request body.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Classify categorizes one message body. It never returns an error: endpoint
// outages, timeouts, and unusable model output all degrade to a result with
// Success=false and the unknown category/confidence, so a classification
// outage never blocks message processing.
func (c *Classifier) Classify(ctx context.Context, body string) domain.ClassificationResult {
	raw, err := c.generate(ctx, buildPrompt(body))
	if err != nil {
		return c.failure(err)
	}

	interp := interpretResponse(raw)

	category, err := domain.ParseCategory(interp.Category)
	if err != nil {
		return c.failure(err)
	}
	confidence, err := domain.ParseConfidence(interp.Confidence)
	if err != nil {
		return c.failure(err)
	}

	return domain.ClassificationResult{
		Success:     true,
		Category:    category,
		Confidence:  confidence,
		RawResponse: raw,
		ModelUsed:   c.model,
	}
}

func (c *Classifier) failure(err error) domain.ClassificationResult {
	c.logger.Error("classification failed", "err", err)
	return domain.ClassificationResult{
		Category:   domain.CategoryUnknown,
		Confidence: domain.ConfidenceUnknown,
		Error:      err.Error(),
	}
}

// generate issues a single synchronous completion request and returns the
// raw response text.
func (c *Classifier) generate(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  c.responseLength,
		},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ollama API error: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}
