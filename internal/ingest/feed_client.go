// Package ingest pulls finished race outcomes from the JSON results
// feed that sits in front of the site-specific scrapers.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/veloform/internal/config"
	"github.com/yourusername/veloform/internal/models"
)

// FeedClient is a rate-limited, retrying HTTP client for the results
// feed.
type FeedClient struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
}

// NewFeedClient creates a feed client from configuration
func NewFeedClient(cfg *config.FeedConfig, log *logrus.Logger) *FeedClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	return &FeedClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  log.WithField("component", "feed_client"),
	}
}

// FetchOutcomes returns races finished strictly after the given time.
// The since filter is exclusive, so callers can advance their watermark
// to the last processed outcome's date without refetching it. The feed
// is expected to serve chronologically ordered outcomes so the caller
// can process them in race order per pool.
func (c *FeedClient) FetchOutcomes(ctx context.Context, since time.Time) ([]models.RaceOutcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	endpoint := fmt.Sprintf("%s/outcomes?since=%s", c.baseURL, url.QueryEscape(since.UTC().Format(time.RFC3339)))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Outcomes []models.RaceOutcome `json:"outcomes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	outcomes := payload.Outcomes[:0]
	for _, o := range payload.Outcomes {
		if o.RaceID == uuid.Nil || len(o.Results) == 0 {
			c.logger.WithField("race", o.Name).Warn("Dropping malformed feed outcome")
			continue
		}
		outcomes = append(outcomes, o)
	}

	c.logger.WithFields(logrus.Fields{"since": since, "outcomes": len(outcomes)}).Debug("Feed poll complete")
	return outcomes, nil
}
