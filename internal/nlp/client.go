package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// Client calls an annotation server (a CoreNLP-style HTTP service) to
// produce per-token lemmas, tags and dependency labels.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	stats      *Stats
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		stats: NewStats(time.Hour),
	}
}

type annotateRequest struct {
	Text string `json:"text"`
}

// Annotate sends one sentence to the annotation server. Transient
// failures (network errors, 5xx) are retried with backoff; client errors
// are not.
func (c *Client) Annotate(ctx context.Context, text string) (Annotation, error) {
	var ann Annotation
	start := time.Now()
	err := retry.Do(
		func() error {
			return c.annotateOnce(ctx, text, &ann)
		},
		retry.Attempts(3),
		retry.Context(ctx),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	c.stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return Annotation{}, err
	}
	return ann, nil
}

func (c *Client) annotateOnce(ctx context.Context, text string, out *Annotation) error {
	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("marshal annotate request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/annotate", bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("annotate: status %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.Unrecoverable(err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode annotation: %w", err))
	}
	return nil
}

// StatsSnapshot returns latency aggregates for recent annotate calls.
func (c *Client) StatsSnapshot() StatsSnapshot {
	return c.stats.Snapshot()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
