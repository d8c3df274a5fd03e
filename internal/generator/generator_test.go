package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
)

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		messages := body["messages"].([]any)
		first := messages[0].(map[string]any)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "compare these", first["content"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "upstream down"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestOpenAI(url string) *OpenAI {
	return NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: url + "/v1/", Model: "test-model", MaxTokens: 100})
}

func TestOpenAI_Generate(t *testing.T) {
	server := completionServer(t, `{"proposals": []}`, http.StatusOK)

	out, err := newTestOpenAI(server.URL).Generate(context.Background(), "compare these")
	require.NoError(t, err)
	assert.Equal(t, `{"proposals": []}`, out)
}

func TestOpenAI_EmptyContent(t *testing.T) {
	server := completionServer(t, "   ", http.StatusOK)

	_, err := newTestOpenAI(server.URL).Generate(context.Background(), "compare these")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAI_UpstreamError(t *testing.T) {
	server := completionServer(t, "", http.StatusInternalServerError)

	_, err := newTestOpenAI(server.URL).Generate(context.Background(), "compare these")
	assert.Error(t, err)
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond, BackoffFactor: 2, MaxDelay: 2 * time.Millisecond}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	g := WithRetry(Func(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	}), fastPolicy(3), nil)

	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_SurfacesLastError(t *testing.T) {
	calls := 0
	last := errors.New("third failure")
	g := WithRetry(Func(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 3 {
			return "", last
		}
		return "", errors.New("earlier failure")
	}), fastPolicy(3), nil)

	_, err := g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	g := WithRetry(Func(func(ctx context.Context, prompt string) (string, error) {
		calls++
		cancel()
		return "", errors.New("fail")
	}), fastPolicy(5), nil)

	_, err := g.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestInstrument(t *testing.T) {
	m := metrics.New()
	g := Instrument(Func(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("nope")
	}), m)

	_, _ = g.Generate(context.Background(), "p")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationCalls.WithLabelValues("error")))
}
