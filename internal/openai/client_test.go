package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		Model:        "test-model",
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "   "})
	require.Error(t, err)
	require.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	text, err := client.Complete(context.Background(), CompletionRequest{Prompt: "say hello"})
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"eventually"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	text, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	require.Equal(t, "eventually", text)
	require.Equal(t, int32(3), calls.Load())
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	require.Equal(t, domain.KindAPI, domain.KindOf(err))
	require.Contains(t, err.Error(), "max retries (3) exceeded")
	require.Equal(t, int32(4), calls.Load())
}

func TestCompleteAuthenticationFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	require.Equal(t, domain.KindAuthentication, domain.KindOf(err))
	require.Equal(t, int32(1), calls.Load())
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	require.Equal(t, domain.KindAPI, domain.KindOf(err))
}

func TestEmbedSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	vector, err := client.Embed(context.Background(), "push-ups")
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
}

func TestEmbedRateLimitSurfacesAsAPIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Embed(context.Background(), "push-ups")
	require.Error(t, err)
	require.Equal(t, domain.KindAPI, domain.KindOf(err))
	require.Equal(t, int32(1), calls.Load())
}
