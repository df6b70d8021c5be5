package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotFound is returned when the remote answers 404
	ErrNotFound = errors.New("resource not found")
	// ErrEmptyURL is returned for an empty source URL
	ErrEmptyURL = errors.New("empty resource url")
	// ErrTooLarge is returned when a body exceeds the client's size limit
	ErrTooLarge = errors.New("resource exceeds size limit")
)

// DefaultMaxBytes bounds a download when no limit is configured.
const DefaultMaxBytes int64 = 25 << 20

// Resource is a downloaded binary with the content type reported by the server.
type Resource struct {
	Data        []byte
	ContentType string
}

type Client struct {
	client   *http.Client
	maxBytes int64
}

// NewClient builds a pooled client. Bodies larger than maxBytes are
// rejected; a non-positive maxBytes means DefaultMaxBytes.
func NewClient(timeout time.Duration, maxBytes int64) *Client {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return NewClientWithHTTP(&http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, maxBytes)
}

// NewClientWithHTTP wraps an existing client, mainly for tests.
func NewClientWithHTTP(c *http.Client, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{client: c, maxBytes: maxBytes}
}

// Get downloads url. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, url string) (*Resource, error) {
	ctx, span := tracing.StartSpan(ctx, "Fetch.Get")
	defer span.End()
	span.SetAttributes(attribute.String("fetch.url", url))

	if url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.ResourceFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ResourceFetchTotal.WithLabelValues("error").Inc()
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.ResourceFetchTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ResourceFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch %s failed with status %d", url, resp.StatusCode)
	}

	if resp.ContentLength > c.maxBytes {
		metrics.ResourceFetchTotal.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%s: %d bytes: %w", url, resp.ContentLength, ErrTooLarge)
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		metrics.ResourceFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if n > c.maxBytes {
		metrics.ResourceFetchTotal.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%s: more than %d bytes: %w", url, c.maxBytes, ErrTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	metrics.ResourceFetchTotal.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int("fetch.bytes", buf.Len()))
	return &Resource{Data: buf.Bytes(), ContentType: contentType}, nil
}
