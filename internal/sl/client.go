package sl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/logging"
)

const userAgent = "slussen/1.0 (https://github.com/spleiner/slussen)"

// Client talks to the SL transport and deviations APIs. It is safe for
// concurrent use and meant to live as long as the process.
type Client struct {
	httpClient *http.Client
	config     appconf.Upstream
	logger     *slog.Logger
}

// NewClient creates a Client with its own pooled transport.
func NewClient(config appconf.Upstream, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	return NewClientWithHTTP(config, &http.Client{Transport: transport}, logger)
}

// NewClientWithHTTP creates a Client around an existing http.Client.
// Per-attempt timeouts come from config, not from httpClient.Timeout.
func NewClientWithHTTP(config appconf.Upstream, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		config:     config,
		logger:     logger.With(slog.String("component", "sl_client")),
	}
}

// DeparturesURL is the bus departures endpoint for one site.
func (c *Client) DeparturesURL(siteID string) string {
	base := strings.TrimRight(c.config.DeparturesBaseURL, "/")
	return fmt.Sprintf("%s/sites/%s/departures?transport=BUS", base, url.PathEscape(siteID))
}

// DeviationsURL is the upcoming deviations endpoint for the given sites.
func (c *Client) DeviationsURL(siteIDs ...string) string {
	base := strings.TrimRight(c.config.DisruptionsBaseURL, "/")
	query := url.Values{}
	query.Set("future", "true")
	for _, id := range siteIDs {
		query.Add("site", id)
	}
	return base + "/messages?" + query.Encode()
}

// Departures fetches the raw bus departures for one site, one entry per
// departure. A body that is valid JSON of another shape yields no entries.
func (c *Client) Departures(ctx context.Context, siteID string) ([]json.RawMessage, error) {
	reqURL := c.DeparturesURL(siteID)
	var body json.RawMessage
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		return nil, fmt.Errorf("fetching departures for site %s: %w", siteID, err)
	}

	var resp DeparturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.unexpectedShape(reqURL, err)
		return []json.RawMessage{}, nil
	}
	if resp.Departures == nil {
		return []json.RawMessage{}, nil
	}
	return resp.Departures, nil
}

// Deviations fetches the raw deviation entries for the given sites. A body
// that is valid JSON but not an array yields no entries.
func (c *Client) Deviations(ctx context.Context, siteIDs ...string) ([]json.RawMessage, error) {
	reqURL := c.DeviationsURL(siteIDs...)
	var body json.RawMessage
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		return nil, fmt.Errorf("fetching deviations for sites %s: %w", strings.Join(siteIDs, ","), err)
	}

	entries := []json.RawMessage{}
	if err := json.Unmarshal(body, &entries); err != nil {
		c.unexpectedShape(reqURL, err)
		return []json.RawMessage{}, nil
	}
	return entries, nil
}

func (c *Client) unexpectedShape(reqURL string, err error) {
	logging.LogWarning(c.logger, "unexpected response shape, treating as empty", err,
		slog.String("url", reqURL))
}

// getJSON performs a GET with a bounded number of attempts and a fixed delay
// between them. Only timeouts, transport errors, 429 and 5xx are retried.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	attempts := c.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.attempt(ctx, reqURL, out)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		logging.LogWarning(c.logger, "retrying upstream request", lastErr,
			slog.String("url", reqURL),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts))

		if err := sleepContext(ctx, c.config.RetryDelay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, reqURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer logging.DrainAndClose(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A deadline hit while streaming the body is a timeout, not bad JSON.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &DecodeError{URL: reqURL, Err: err}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
