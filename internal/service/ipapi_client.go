package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jjenkins/globeguru/internal/model"
)

const (
	// DefaultIPAPIURL is the public ipapi.co endpoint
	DefaultIPAPIURL = "https://ipapi.co"
	defaultTimeout  = 10 * time.Second
	maxRetries      = 2
	initialBackoff  = 250 * time.Millisecond
	maxBodySize     = 64 << 10
)

// ErrLookupFailed is returned when the service answered but could not resolve a country
var ErrLookupFailed = errors.New("ip lookup failed")

// IPAPIClient resolves IP addresses to countries with the ipapi.co JSON API
type IPAPIClient struct {
	client  *http.Client
	baseURL string
}

// NewIPAPIClient creates a client for baseURL, defaulting to DefaultIPAPIURL
func NewIPAPIClient(baseURL string) *IPAPIClient {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	return &IPAPIClient{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ipapiResponse represents the API response for /{ip}/json/
type ipapiResponse struct {
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// Lookup resolves ip to a location. An empty ip asks the service about the caller.
func (c *IPAPIClient) Lookup(ctx context.Context, ip string) (*model.Location, error) {
	endpoint := c.baseURL + "/json/"
	if ip != "" {
		endpoint = fmt.Sprintf("%s/%s/json/", c.baseURL, url.PathEscape(ip))
	}

	body, err := c.fetchWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", ip, err)
	}

	var resp ipapiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse lookup response: %w", err)
	}
	if resp.Error {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Reason)
	}
	if len(resp.CountryCode) != 2 {
		return nil, fmt.Errorf("%w: no country in response", ErrLookupFailed)
	}

	return &model.Location{
		Country:     resp.CountryName,
		CountryCode: strings.ToUpper(resp.CountryCode),
		City:        resp.City,
		Region:      resp.Region,
		Source:      model.SourceIP,
	}, nil
}

// fetchWithRetry performs an HTTP GET, retrying transport errors and rate limits
func (c *IPAPIClient) fetchWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%w: unexpected status code: %d", ErrLookupFailed, resp.StatusCode)
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
