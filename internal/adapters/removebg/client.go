package removebg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultEndpoint    = "https://api.remove.bg/v1.0/removebg"
	defaultTimeout     = 2 * time.Minute
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Config configures the client. Zero values fall back to defaults.
type Config struct {
	APIKey      string
	Endpoint    string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration // first retry delay, doubled on each attempt
}

// Client implements ports.BackgroundRemover using the remove.bg REST API.
type Client struct {
	cfg    Config
	client *http.Client
	logger *log.Logger
}

// NewClient creates a new Client. The API key is taken from cfg, never
// from the environment.
func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Remove uploads image and returns the background-removed result.
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff up to MaxAttempts; other statuses fail immediately.
func (c *Client) Remove(ctx context.Context, image []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("remove.bg API key not set")
	}

	reqID := uuid.New().String()
	delay := c.cfg.Backoff
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Printf("[REMOVEBG %s] retry %d/%d in %s: %v", reqID, attempt, c.cfg.MaxAttempts, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		start := time.Now()
		out, err := c.send(ctx, image)
		if err == nil {
			c.logger.Printf("[REMOVEBG %s] ok, %d bytes in %dms", reqID, len(out), time.Since(start).Milliseconds())
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, image []byte) ([]byte, error) {
	body, contentType, err := buildForm(image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remove.bg request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func buildForm(image []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image_file", "image_file")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("size", "auto"); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
