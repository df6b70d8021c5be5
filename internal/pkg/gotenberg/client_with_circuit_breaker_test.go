package gotenberg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"passport-admin-go/internal/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWithCircuitBreaker_OpensOnFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := circuitbreaker.DefaultConfig("gotenberg_test")
	cfg.FailureThreshold = 3
	cfg.ResetTimeout = time.Minute
	client := NewClientWithCircuitBreaker(NewClient(server.URL, time.Second), cfg)

	require.Equal(t, circuitbreaker.StateClosed, client.State())

	for i := 0; i < 3; i++ {
		_, err := client.Screenshot(context.Background(), []byte("<html></html>"), 10, 10)
		assert.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.State())
	assert.False(t, client.IsHealthy())

	_, err := client.Screenshot(context.Background(), []byte("<html></html>"), 10, 10)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load(), "open breaker must not reach the server")
}

func TestClientWithCircuitBreaker_PassesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngMagic)
	}))
	defer server.Close()

	client := NewClientWithCircuitBreaker(NewClient(server.URL, time.Second), circuitbreaker.DefaultConfig("gotenberg_ok"))
	out, err := client.Screenshot(context.Background(), []byte("<html></html>"), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, out)
	assert.Equal(t, "gotenberg_ok", client.Name())
	assert.True(t, client.IsHealthy())
}

func TestClientWithCircuitBreaker_Integration(t *testing.T) {
	gotenbergURL := os.Getenv("GOTENBERG_URL")
	if gotenbergURL == "" {
		t.Skip("GOTENBERG_URL not set")
	}

	client := NewClientWithCircuitBreaker(NewClient(gotenbergURL, 30*time.Second), circuitbreaker.DefaultConfig("gotenberg_it"))
	out, err := client.Screenshot(context.Background(), []byte("<html><body>test</body></html>"), 200, 100)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, out[:len(pngMagic)])
}
