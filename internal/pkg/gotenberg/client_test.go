package gotenberg

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestClient_Screenshot(t *testing.T) {
	var (
		gotPath   string
		gotFields map[string]string
		gotHTML   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)
		data, _ := io.ReadAll(file)
		gotHTML = string(data)

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngMagic)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	out, err := client.Screenshot(context.Background(), []byte("<html>cover</html>"), 1588, 2246)
	require.NoError(t, err)

	assert.Equal(t, pngMagic, out)
	assert.Equal(t, "/forms/chromium/screenshot/html", gotPath)
	assert.Equal(t, "<html>cover</html>", gotHTML)
	assert.Equal(t, "1588", gotFields["width"])
	assert.Equal(t, "2246", gotFields["height"])
	assert.Equal(t, "png", gotFields["format"])
	assert.Equal(t, "true", gotFields["clip"])
}

func TestClient_ScreenshotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Screenshot(context.Background(), []byte("<html></html>"), 10, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestClient_HealthCheck(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	assert.NoError(t, client.HealthCheck(context.Background()))

	healthy = false
	assert.Error(t, client.HealthCheck(context.Background()))
}
