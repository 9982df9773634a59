// Package gateway performs outbound lookups against the public-record
// upstreams. Every external call goes through Client.Fetch, which owns the
// timeout and retry policy; per-upstream schema knowledge lives in the
// normalization step of each source, so probes only ever see flat records.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"veridian/diligence-api/internal/domain"
)

// ErrUnavailable is returned by a DataSource when every candidate upstream
// exhausted its retry budget. Probes recover from it locally; it never
// reaches the end user.
var ErrUnavailable = errors.New("source unavailable")

// DataSource is one pluggable external lookup. Production wiring selects
// HTTP-backed implementations; tests and simulated mode inject deterministic
// ones.
type DataSource interface {
	// ID identifies the source in ModuleResult.SourcesConsulted.
	ID() string
	// Lookup resolves a normalized record for the identifier, or
	// ErrUnavailable when no upstream could answer.
	Lookup(ctx context.Context, identifier string) (domain.Record, error)
}

// Observer is notified after every outbound fetch. Used to feed metrics
// without the gateway importing them.
type Observer func(sourceID string, ok bool)

const (
	// DefaultTimeout bounds one outbound call, including retries' individual
	// attempts.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRetries is the retry budget after the initial attempt.
	DefaultMaxRetries = 3
	// retryBaseDelay grows linearly with the attempt number: 1s, 2s, 3s.
	retryBaseDelay = 1 * time.Second
)

// Client issues outbound lookups with a hard per-attempt timeout and a
// bounded linear-backoff retry policy. Retries within one call are strictly
// sequential.
type Client struct {
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	observe    Observer
}

// NewClient creates a gateway client. Zero values select the defaults.
func NewClient(timeout time.Duration, maxRetries int, observe Observer) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if observe == nil {
		observe = func(string, bool) {}
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		timeout:    timeout,
		maxRetries: maxRetries,
		baseDelay:  retryBaseDelay,
		observe:    observe,
	}
}

// Fetch performs one GET against url, retrying on failure with a
// 1s·(attempt+1) wait between attempts. The returned SourceResponse is
// never nil-equivalent: ok=false carries the last error message.
func (c *Client) Fetch(ctx context.Context, url string) domain.SourceResponse {
	var lastErr error
	for attempt := 0; ; attempt++ {
		payload, err := c.fetchOnce(ctx, url)
		if err == nil {
			c.observe(url, true)
			return domain.SourceResponse{
				OK:         true,
				Payload:    payload,
				SourceID:   url,
				ObservedAt: time.Now().UTC(),
			}
		}
		lastErr = err

		// The caller going away ends the whole analysis; don't burn the
		// retry budget on a dead context.
		if ctx.Err() != nil {
			break
		}
		if attempt >= c.maxRetries {
			break
		}

		wait := c.baseDelay * time.Duration(attempt+1)
		slog.Debug("gateway: retrying", "url", url, "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(wait):
			continue
		}
		break
	}

	c.observe(url, false)
	return domain.SourceResponse{
		OK:           false,
		ErrorMessage: lastErr.Error(),
		SourceID:     url,
		ObservedAt:   time.Now().UTC(),
	}
}

func (c *Client) fetchOnce(ctx context.Context, url string) (domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/xml;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	return parseBody(resp.Header.Get("Content-Type"), body)
}

// parseBody turns a response body into a Record. JSON objects map directly;
// JSON arrays are wrapped as {"items", "count"}; XML/RSS documents are
// reduced to their raw text plus a coarse <item>/<entry> count, which is all
// the consuming sources need.
func parseBody(contentType string, body []byte) (domain.Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.Contains(contentType, "xml") || strings.HasPrefix(trimmed, "<") {
		count := strings.Count(trimmed, "<item") + strings.Count(trimmed, "<entry")
		return domain.Record{"raw": trimmed, "item_count": count}, nil
	}

	switch {
	case strings.HasPrefix(trimmed, "["):
		var items []any
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("parse array body: %w", err)
		}
		return domain.Record{"items": items, "count": len(items)}, nil
	default:
		var rec domain.Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("parse body: %w", err)
		}
		return rec, nil
	}
}
