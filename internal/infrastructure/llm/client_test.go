package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-forge-api/internal/config"
	apperrors "ui-forge-api/pkg/errors"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(&config.LLMConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "test-model",
		MaxTokens:  256,
		Timeout:    time.Second,
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	})
}

func completionJSON(contents ...string) string {
	var choices []string
	for i, c := range contents {
		choices = append(choices, fmt.Sprintf(`{"index":%d,"message":{"role":"assistant","content":%q}}`, i, c))
	}
	return fmt.Sprintf(`{"id":"cmpl-1","model":"test-model","choices":[%s]}`, joinComma(choices))
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func TestComplete_ReturnsFirstChoiceContent(t *testing.T) {
	var gotReq completionRequest
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, completionJSON("first answer", "second answer"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL, 0).Complete(context.Background(), "make a button")

	require.NoError(t, err)
	assert.Equal(t, "first answer", text)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "make a button", gotReq.Messages[0].Content)
}

func TestComplete_EmptyChoicesNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"id":"cmpl-1","model":"test-model","choices":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Complete(context.Background(), "make a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyOutput, apperrors.AsAppError(err).Code)
	assert.Equal(t, 1, calls)
}

func TestComplete_EmptyContentNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, completionJSON(""))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Complete(context.Background(), "make a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyOutput, apperrors.AsAppError(err).Code)
	assert.Equal(t, 1, calls)
}

func TestComplete_ServerErrorExhaustsRetryBudget(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 2).Complete(context.Background(), "make a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.AsAppError(err).Code)
	assert.Equal(t, 3, calls)
}

func TestComplete_ServerErrorThenSuccess(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "try again", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, completionJSON("recovered"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL, 2).Complete(context.Background(), "make a button")

	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, calls)
}

func TestComplete_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Complete(context.Background(), "make a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.AsAppError(err).Code)
	assert.Equal(t, 1, calls)
}

func TestComplete_TransportErrorRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 连接必然失败

	client := newTestClient(server.URL, 2)
	start := time.Now()
	_, err := client.Complete(context.Background(), "make a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.AsAppError(err).Code)
	// 两次重试各等待一个 retryDelay
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}

func TestComplete_CanceledContext(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL, 3).Complete(ctx, "make a button")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
