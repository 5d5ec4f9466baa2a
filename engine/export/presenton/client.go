// Package presenton is the client for the Presenton AI presentation
// service. The service is a black box here: only its health and generation
// endpoints matter, both bounded by caller-supplied timeouts.
package presenton

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/arloai/reporting/pkg/logger"
)

// Config configures the client.
type Config struct {
	BaseURL         string
	HealthTimeout   time.Duration
	GenerateTimeout time.Duration
	Retries         int
}

// Client talks to a Presenton installation.
type Client struct {
	http *resty.Client
	cfg  Config
}

// New creates a Presenton client.
func New(cfg Config) *Client {
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 120 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: client, cfg: cfg}
}

// healthEndpoints are probed in order; installations differ on where they
// expose the check.
var healthEndpoints = []string{"/api/health", "/health"}

// HealthCheck probes the service with a bounded timeout. Any failure means
// not healthy; callers skip straight to the fallback path without spending
// a generation timeout on a known-down dependency.
func (c *Client) HealthCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	for _, endpoint := range healthEndpoints {
		resp, err := c.http.R().SetContext(probeCtx).Get(endpoint)
		if err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
			return true
		}
	}
	return false
}

// generateRequest is the generation payload.
type generateRequest struct {
	Prompt       string `json:"prompt"`
	Template     string `json:"template"`
	ExportFormat string `json:"export_format"`
}

// generateResponse covers the JSON answer shapes the service produces: a
// download URL, inline base64 file data, or neither when the body is the
// deck itself.
type generateResponse struct {
	DownloadURL string `json:"download_url"`
	FileData    string `json:"file_data"`
}

// Generate requests a deck for the given prompt. Transient failures retry
// with constant backoff inside the configured timeout budget; a non-success
// status or malformed payload returns a ServiceError.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(uint64(c.cfg.Retries), retry.NewConstant(500*time.Millisecond))
	var deck []byte
	err := retry.Do(genCtx, backoff, func(ctx context.Context) error {
		var attemptErr error
		deck, attemptErr = c.generateOnce(ctx, prompt)
		if attemptErr == nil {
			return nil
		}
		var svcErr *ServiceError
		if errors.As(attemptErr, &svcErr) && svcErr.Transient() {
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string) ([]byte, error) {
	log := logger.FromContext(ctx)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt, Template: "business", ExportFormat: "pptx"}).
		Post("/api/generate")
	if err != nil {
		return nil, &ServiceError{Code: ErrCodeUnreachable, Message: "generation request failed", cause: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &ServiceError{
			Code:    ErrCodeBadStatus,
			Message: "generation returned non-success status",
			Status:  resp.StatusCode(),
		}
	}

	body := resp.Body()
	var jsonResp generateResponse
	if json.Unmarshal(body, &jsonResp) == nil {
		switch {
		case jsonResp.DownloadURL != "":
			log.Debug("downloading generated deck", "url", jsonResp.DownloadURL)
			return c.download(ctx, jsonResp.DownloadURL)
		case jsonResp.FileData != "":
			deck, err := base64.StdEncoding.DecodeString(jsonResp.FileData)
			if err != nil {
				return nil, &ServiceError{Code: ErrCodeMalformed, Message: "file_data is not valid base64", cause: err}
			}
			return deck, nil
		}
	}
	// The body is the deck itself.
	return body, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &ServiceError{Code: ErrCodeUnreachable, Message: "deck download failed", cause: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &ServiceError{Code: ErrCodeBadStatus, Message: "deck download returned non-success status", Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}
