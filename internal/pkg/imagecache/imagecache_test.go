package imagecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"passport-admin-go/internal/pkg/fetch"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

type stubFetcher struct {
	calls atomic.Int32
	data  map[string]*fetch.Resource
}

func (f *stubFetcher) Get(_ context.Context, url string) (*fetch.Resource, error) {
	f.calls.Add(1)
	if res, ok := f.data[url]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("%s: %w", url, fetch.ErrNotFound)
}

type memoryTier struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func (m *memoryTier) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryTier) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

const photoURL = "https://storage.example/photos/42.png"

func newStubFetcher() *stubFetcher {
	return &stubFetcher{data: map[string]*fetch.Resource{
		photoURL: {Data: []byte("png-bytes"), ContentType: "image/png"},
	}}
}

func TestCache(t *testing.T) {
	_, hits, misses, failures, itemsCount := createTestMetrics()
	fetcher := newStubFetcher()
	cache := newCacheWithMetrics(fetcher, hits, misses, failures, itemsCount)

	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "TestCache")
	defer span.End()

	t.Run("Fetch stores a data uri", func(t *testing.T) {
		handle := cache.FetchAndCache(ctx, photoURL)
		assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", handle)

		got, ok := cache.Lookup(photoURL)
		require.True(t, ok)
		assert.Equal(t, handle, got)
	})

	t.Run("Second fetch is a hit", func(t *testing.T) {
		before := fetcher.calls.Load()
		cache.FetchAndCache(ctx, photoURL)
		assert.Equal(t, before, fetcher.calls.Load(), "cached url must not be downloaded again")
		assert.Equal(t, float64(1), testutil.ToFloat64(hits))
	})

	t.Run("Failure returns original url", func(t *testing.T) {
		missing := "https://storage.example/photos/missing.png"
		assert.Equal(t, missing, cache.FetchAndCache(ctx, missing))

		_, ok := cache.Lookup(missing)
		assert.False(t, ok, "failed downloads are not cached")
		assert.Equal(t, float64(1), testutil.ToFloat64(failures))
	})

	t.Run("Empty url and handles pass through", func(t *testing.T) {
		assert.Equal(t, "", cache.FetchAndCache(ctx, ""))
		inline := "data:image/png;base64,AAAA"
		assert.Equal(t, inline, cache.FetchAndCache(ctx, inline))
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(itemsCount))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheLookupNeverFetches(t *testing.T) {
	_, hits, misses, failures, itemsCount := createTestMetrics()
	fetcher := newStubFetcher()
	cache := newCacheWithMetrics(fetcher, hits, misses, failures, itemsCount)

	_, ok := cache.Lookup(photoURL)
	assert.False(t, ok)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestCacheConcurrency(t *testing.T) {
	_, hits, misses, failures, itemsCount := createTestMetrics()
	cache := newCacheWithMetrics(newStubFetcher(), hits, misses, failures, itemsCount)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id] = cache.FetchAndCache(ctx, photoURL)
		}(i)
	}
	wg.Wait()

	stored, ok := cache.Lookup(photoURL)
	require.True(t, ok)
	for _, r := range results {
		assert.Equal(t, stored, r)
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(itemsCount))
}

func TestCacheSharedTier(t *testing.T) {
	ctx := context.Background()

	t.Run("Shared hit skips download", func(t *testing.T) {
		_, hits, misses, failures, itemsCount := createTestMetrics()
		fetcher := newStubFetcher()
		tier := &memoryTier{values: map[string]string{photoURL: "data:image/png;base64,c2hhcmVk"}}
		cache := newCacheWithMetrics(fetcher, hits, misses, failures, itemsCount, WithSharedTier(tier))

		assert.Equal(t, "data:image/png;base64,c2hhcmVk", cache.FetchAndCache(ctx, photoURL))
		assert.Equal(t, int32(0), fetcher.calls.Load())
	})

	t.Run("Download is written to shared tier", func(t *testing.T) {
		_, hits, misses, failures, itemsCount := createTestMetrics()
		tier := &memoryTier{values: map[string]string{}}
		cache := newCacheWithMetrics(newStubFetcher(), hits, misses, failures, itemsCount, WithSharedTier(tier))

		handle := cache.FetchAndCache(ctx, photoURL)
		assert.Equal(t, handle, tier.values[photoURL])
	})

	t.Run("Shared tier errors are ignored", func(t *testing.T) {
		_, hits, misses, failures, itemsCount := createTestMetrics()
		tier := &memoryTier{values: map[string]string{}, err: errors.New("connection refused")}
		cache := newCacheWithMetrics(newStubFetcher(), hits, misses, failures, itemsCount, WithSharedTier(tier))

		assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", cache.FetchAndCache(ctx, photoURL))
	})

	t.Run("Malformed shared entry is refetched", func(t *testing.T) {
		_, hits, misses, failures, itemsCount := createTestMetrics()
		fetcher := newStubFetcher()
		tier := &memoryTier{values: map[string]string{photoURL: "data:image/png;base64,%%%"}}
		cache := newCacheWithMetrics(fetcher, hits, misses, failures, itemsCount, WithSharedTier(tier))

		assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", cache.FetchAndCache(ctx, photoURL))
		assert.Equal(t, int32(1), fetcher.calls.Load())
		assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", tier.values[photoURL])
	})
}

func TestEncodeDecode(t *testing.T) {
	handle := Encode("image/jpeg; charset=binary", []byte{1, 2, 3})
	assert.Equal(t, "data:image/jpeg;base64,AQID", handle)

	mime, data, ok := Decode(handle)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, ok = Decode("https://storage.example/a.png")
	assert.False(t, ok)

	assert.Equal(t, "data:application/octet-stream;base64,", Encode("", nil))
}
