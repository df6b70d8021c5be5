package imagecache

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"passport-admin-go/internal/pkg/fetch"
	"passport-admin-go/internal/pkg/logger"
	"passport-admin-go/internal/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Fetcher downloads a binary resource.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Resource, error)
}

// SharedTier is an optional second level shared between instances.
// A miss is reported as ok == false with a nil error.
type SharedTier interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Cache maps a source URL to an inline data URI handle. Entries live for the
// whole process; the first stored handle for a URL wins.
type Cache struct {
	items   sync.Map
	fetcher Fetcher
	shared  SharedTier

	hits       prometheus.Counter
	misses     prometheus.Counter
	failures   prometheus.Counter
	itemsCount prometheus.Gauge
}

type Option func(*Cache)

// WithSharedTier enables a shared second level, e.g. Redis.
func WithSharedTier(tier SharedTier) Option {
	return func(c *Cache) {
		c.shared = tier
	}
}

func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	return newCacheWithMetrics(fetcher, cacheHits, cacheMisses, cacheFailures, cacheItemsCount, opts...)
}

func newCacheWithMetrics(fetcher Fetcher, hits, misses, failures prometheus.Counter, items prometheus.Gauge, opts ...Option) *Cache {
	c := &Cache{
		fetcher:    fetcher,
		hits:       hits,
		misses:     misses,
		failures:   failures,
		itemsCount: items,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FetchAndCache returns the cached handle for url, downloading it on first use.
// It never fails: when the image cannot be fetched the original url is
// returned so the caller can still reference it remotely.
func (c *Cache) FetchAndCache(ctx context.Context, url string) string {
	if url == "" || IsHandle(url) {
		return url
	}

	ctx, span := tracing.StartSpan(ctx, "ImageCache.FetchAndCache")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", url))

	if handle, ok := c.items.Load(url); ok {
		c.hits.Inc()
		span.AddEvent("Cache hit")
		logger.Debug("Image cache hit", zap.String("url", url))
		return handle.(string)
	}
	c.misses.Inc()

	if handle, ok := c.fromShared(ctx, url); ok {
		span.AddEvent("Shared tier hit")
		return c.store(url, handle)
	}

	res, err := c.fetcher.Get(ctx, url)
	if err != nil {
		c.failures.Inc()
		tracing.RecordError(ctx, err)
		logger.Warn("Failed to fetch image, using remote url",
			zap.String("url", url),
			zap.Error(err))
		return url
	}

	handle := Encode(res.ContentType, res.Data)
	actual := c.store(url, handle)
	if actual == handle && c.shared != nil {
		if err := c.shared.Set(ctx, url, handle); err != nil {
			logger.Warn("Failed to write image to shared cache", zap.String("url", url), zap.Error(err))
		}
	}
	span.AddEvent("Cache updated")
	return actual
}

// Lookup returns the cached handle without any network access.
func (c *Cache) Lookup(url string) (string, bool) {
	handle, ok := c.items.Load(url)
	if !ok {
		return "", false
	}
	return handle.(string), true
}

// Len is the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	c.items.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (c *Cache) store(url, handle string) string {
	actual, loaded := c.items.LoadOrStore(url, handle)
	if !loaded {
		c.itemsCount.Inc()
	}
	return actual.(string)
}

func (c *Cache) fromShared(ctx context.Context, url string) (string, bool) {
	if c.shared == nil {
		return "", false
	}
	handle, ok, err := c.shared.Get(ctx, url)
	if err != nil {
		logger.Warn("Shared image cache unavailable", zap.String("url", url), zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	if _, _, valid := Decode(handle); !valid {
		logger.Warn("Ignoring malformed shared cache entry", zap.String("url", url))
		return "", false
	}
	return handle, true
}

// Encode builds a data URI from a content type and raw bytes.
func Encode(contentType string, data []byte) string {
	mime := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a data URI handle back into its mime type and bytes.
func Decode(handle string) (string, []byte, bool) {
	if !IsHandle(handle) {
		return "", nil, false
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(handle, "data:"), ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return strings.TrimSuffix(meta, ";base64"), data, true
}

// IsHandle reports whether s is already an inline data URI.
func IsHandle(s string) bool {
	return strings.HasPrefix(s, "data:")
}
