// Package captiontool implements the captions.Provider interface against
// the external caption-fetching service over HTTP.
package captiontool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lexivid/lexivid/internal/captions"
	"github.com/lexivid/lexivid/internal/config"
)

// Client fetches caption tracks from the configured caption tool endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a caption tool client. If logger is nil, a default
// logger is used.
func NewClient(cfg config.CaptionsConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With(slog.String("component", "caption_client")),
	}
}

// Ensure Client implements captions.Provider
var _ captions.Provider = (*Client)(nil)

type fetchRequest struct {
	TargetID    string `json:"target_id"`
	ExternalID  string `json:"external_id"`
	ExternalURL string `json:"external_url"`
}

// FetchCaptions implements captions.Provider. The tool reports "no
// captions" as a typed unavailable result; only transport failures and
// unexpected statuses become errors.
func (c *Client) FetchCaptions(ctx context.Context, targetID, externalID, externalURL string) (*captions.Result, error) {
	body, err := json.Marshal(fetchRequest{
		TargetID:    targetID,
		ExternalID:  externalID,
		ExternalURL: externalURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode caption request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build caption request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption tool request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption tool returned status %d", resp.StatusCode)
	}

	var result captions.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode caption response: %w", err)
	}

	switch result.Status {
	case captions.StatusFetched, captions.StatusUnavailable:
		return &result, nil
	default:
		return nil, fmt.Errorf("caption tool returned unknown status %q", result.Status)
	}
}
