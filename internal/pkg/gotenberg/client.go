package gotenberg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"passport-admin-go/internal/pkg/metrics"
	"passport-admin-go/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const screenshotPath = "/forms/chromium/screenshot/html"

// Client talks to a Gotenberg instance.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
		WriteBufferSize:     64 * 1024,
		ReadBufferSize:      64 * 1024,
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Screenshot renders an HTML document with Chromium and returns a PNG of
// exactly width x height device pixels.
func (c *Client) Screenshot(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "Gotenberg.Screenshot")
	defer span.End()
	span.SetAttributes(
		attribute.Int("screenshot.width", width),
		attribute.Int("screenshot.height", height),
		attribute.Int("screenshot.html_bytes", len(html)),
	)

	start := time.Now()
	defer func() {
		metrics.RasterizeDuration.WithLabelValues("screenshot").Observe(time.Since(start).Seconds())
	}()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(html); err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to write html: %w", err)
	}

	fields := map[string]string{
		"width":  strconv.Itoa(width),
		"height": strconv.Itoa(height),
		"clip":   "true",
		"format": "png",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+screenshotPath, body)
	if err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RasterizeRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("screenshot failed with status %d: %s", resp.StatusCode, string(msg))
	}

	out := new(bytes.Buffer)
	if _, err := io.Copy(out, resp.Body); err != nil {
		metrics.RasterizeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	metrics.RasterizeRequestsTotal.WithLabelValues("success").Inc()
	return out.Bytes(), nil
}

// HealthCheck calls Gotenberg's /health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RasterizeDuration.WithLabelValues("health").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status code %d", resp.StatusCode)
	}
	return nil
}
