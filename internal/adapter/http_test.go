package adapter_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func fastRetry() adapter.RetryConfig {
	return adapter.RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
}

func TestRealHTTPClient_GetBytes_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := adapter.NewHTTPClientWithRetry(5*time.Second, fastRetry())
	body, err := client.GetBytes(context.Background(), srv.URL, map[string]string{"X-API-KEY": "test-key"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRealHTTPClient_GetBytes_PermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer srv.Close()

	client := adapter.NewHTTPClientWithRetry(5*time.Second, fastRetry())
	_, err := client.GetBytes(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealHTTPClient_PostBytes_ReplaysBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"method":"ping"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	client := adapter.NewHTTPClientWithRetry(5*time.Second, fastRetry())
	body, err := client.PostBytes(context.Background(), srv.URL, map[string]string{"Content-Type": "application/json"}, []byte(`{"method":"ping"}`))

	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRealHTTPClient_GetPartialContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bytes=0-3", r.Header.Get("Range"))
		// Ignore the range header and send everything
		_, _ = w.Write([]byte("GIF89a-rest-of-file"))
	}))
	defer srv.Close()

	client := adapter.NewHTTPClient(5 * time.Second)
	content, err := client.GetPartialContent(context.Background(), srv.URL, 4)

	require.NoError(t, err)
	assert.Equal(t, "GIF8", string(content))
}

func TestRealHTTPClient_Head(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "video/mp4")
	}))
	defer srv.Close()

	client := adapter.NewHTTPClient(5 * time.Second)
	resp, err := client.Head(context.Background(), srv.URL)

	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))
}
