package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-tagger/internal/services/extract"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "business, finance"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", "", server.URL+"/v1/")
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, client.Model())

	got, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are an expert document tagger."},
			{Role: RoleUser, Content: "tag this"},
		},
		Temperature: Temperature(0.7),
		MaxTokens:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "business, finance", got)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, 0.7, body["temperature"])
	assert.EqualValues(t, 2000, body["max_tokens"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestOpenAIClient_ProviderErrors(t *testing.T) {
	status := http.StatusTooManyRequests
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"error": {"message": "nope", "type": "err", "code": "x"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", "gpt-4o", server.URL+"/v1/")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.True(t, IsRetryable(err))

	status = http.StatusUnauthorized
	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.False(t, IsRetryable(err))
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "gpt-4o", "")
	assert.Error(t, err)
}

func TestAnthropicClient_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "{\"name\": \"Loft\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 5, "output_tokens": 7}
		}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient("test-key", "", server.URL+"/")
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "first"},
			{Role: RoleSystem, Content: "second"},
			{Role: RoleUser, Content: "plan"},
		},
		Temperature: Temperature(0.8),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Loft"}`, got)

	assert.EqualValues(t, defaultAnthropicMaxTokens, body["max_tokens"])
	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "first\n\nsecond", system[0].(map[string]any)["text"])
	assert.Len(t, body["messages"], 1)
}

func TestAnthropicClient_RequiresUserTurn(t *testing.T) {
	client, err := NewAnthropicClient("test-key", "", "http://127.0.0.1:1/")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleSystem, Content: "only"}}})
	assert.Error(t, err)
}

func TestRetrier_RetriesRetryableUpToBudget(t *testing.T) {
	r := NewRetrier(2, time.Millisecond)

	calls := 0
	err := r.Do(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return &extract.UnparsableError{Raw: "nope"}
	})
	require.ErrorIs(t, err, extract.ErrUnparsableCompletion)
	assert.Equal(t, 3, calls)
}

func TestRetrier_StopsOnSuccess(t *testing.T) {
	r := NewRetrier(2, time.Millisecond)

	calls := 0
	err := r.Do(context.Background(), "test", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &ProviderError{Provider: "openai", StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetrier_FinalErrorsNotRetried(t *testing.T) {
	r := NewRetrier(2, time.Millisecond)

	for _, final := range []error{
		&ProviderError{Provider: "openai", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")},
		errors.New("boom"),
	} {
		calls := 0
		err := r.Do(context.Background(), "test", func(ctx context.Context) error {
			calls++
			return final
		})
		assert.Equal(t, final, err)
		assert.Equal(t, 1, calls)
	}
}

func TestRetrier_HonoursContext(t *testing.T) {
	r := NewRetrier(5, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := r.Do(ctx, "test", func(ctx context.Context) error {
		calls++
		cancel()
		return extract.ErrEmptyCompletion
	})
	require.ErrorIs(t, err, extract.ErrEmptyCompletion)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(ErrNoContent))
	assert.True(t, IsRetryable(&extract.SchemaError{Fields: []string{"x"}, Err: errors.New("x")}))
	assert.True(t, IsRetryable(&ProviderError{Provider: "openai", Err: errors.New("connection reset")}))
	assert.False(t, IsRetryable(&ProviderError{Provider: "openai", Err: context.Canceled}))
}
