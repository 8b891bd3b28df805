// Package fetch retrieves article NXML from the NCBI efetch service.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultBaseURL is the NCBI efetch endpoint serving PMC articles.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

const maxBodyBytes = 32 << 20

// Client downloads article XML by PMC id. The configured delay is
// applied before every request, per the NCBI guidelines for high-volume
// retrieval.
type Client struct {
	baseURL    string
	delay      time.Duration
	httpClient *http.Client
}

func NewClient(baseURL string, delay time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		delay:   delay,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Article fetches the NXML document for one PMC id.
func (c *Client) Article(ctx context.Context, pmcID string) ([]byte, error) {
	if pmcID == "" {
		return nil, fmt.Errorf("fetch article: empty pmc id")
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.fetchOnce(ctx, pmcID)
			return err
		},
		retry.Attempts(3),
		retry.Context(ctx),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, pmcID string) ([]byte, error) {
	q := url.Values{}
	q.Set("db", "pmc")
	q.Set("id", pmcID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pmcID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("fetch %s: status %d: %s", pmcID, resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pmcID, err)
	}
	return data, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
