package generate_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docufy-ai/docufy/pkg/generate"
	"github.com/docufy-ai/docufy/pkg/pricing"
	"github.com/docufy-ai/docufy/pkg/prompt"
)

func remoteModel() pricing.Model {
	return pricing.Model{
		Provider: "openai",
		Name:     "gpt-5-nano",
		Pricing:  pricing.Entry{InputCostPerMillion: 0.05, OutputCostPerMillion: 0.40},
		Kind:     pricing.KindRemote,
	}
}

func fakeProvider(t *testing.T, content string, reqCh chan<- []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if reqCh != nil {
			reqCh <- body
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-5-nano",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     318,
				"completion_tokens": 2820,
				"total_tokens":      3138,
				"completion_tokens_details": map[string]any{
					"reasoning_tokens": 2048,
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestGenerate(t *testing.T) {
	reqCh := make(chan []byte, 1)
	srv := fakeProvider(t, "documented source", reqCh)
	defer srv.Close()

	client, err := generate.NewClient(remoteModel(), generate.Options{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	messages := []prompt.Message{
		{Role: prompt.RoleSystem, Content: "You document code."},
		{Role: prompt.RoleUser, Content: "Document this: func f() {}"},
	}

	content, usage, err := client.Generate(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "documented source", content)
	assert.Equal(t, int64(318), usage.InputTokens)
	assert.Equal(t, int64(2820), usage.OutputTokens)
	assert.Equal(t, int64(2048), usage.ReasoningTokens)

	// The wire request must carry the exact message sequence.
	var sent struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(<-reqCh, &sent))
	assert.Equal(t, "gpt-5-nano", sent.Model)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Equal(t, "You document code.", sent.Messages[0].Content)
	assert.Equal(t, "user", sent.Messages[1].Role)
	assert.Equal(t, "Document this: func f() {}", sent.Messages[1].Content)
}

func TestGenerate_StripsMarkdownFences(t *testing.T) {
	srv := fakeProvider(t, "```python\ndef f():\n    pass\n```", nil)
	defer srv.Close()

	client, err := generate.NewClient(remoteModel(), generate.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	content, _, err := client.Generate(context.Background(), []prompt.Message{
		{Role: prompt.RoleSystem, Content: "sys"},
		{Role: prompt.RoleUser, Content: "user"},
	})
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    pass\n", content)
}

func TestGenerate_NoReasoningTokensReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-test","object":"chat.completion","created":1700000000,
			"model":"llama3.1:8b",
			"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}
		}`))
	}))
	defer srv.Close()

	local := pricing.Model{Provider: "ollama", Name: "llama3.1:8b", Kind: pricing.KindLocal}
	client, err := generate.NewClient(local, generate.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, usage, err := client.Generate(context.Background(), []prompt.Message{
		{Role: prompt.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage.ReasoningTokens)
	assert.Equal(t, int64(10), usage.InputTokens)
	assert.Equal(t, int64(20), usage.OutputTokens)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	srv := fakeProvider(t, "", nil)
	defer srv.Close()

	client, err := generate.NewClient(remoteModel(), generate.Options{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, _, err = client.Generate(context.Background(), []prompt.Message{
		{Role: prompt.RoleUser, Content: "hi"},
	})
	assert.Error(t, err)
}

func TestNewClient_RemoteRequiresAPIKey(t *testing.T) {
	_, err := generate.NewClient(remoteModel(), generate.Options{})
	assert.Error(t, err)
}

func TestNewClient_LocalNeedsNoKey(t *testing.T) {
	local := pricing.Model{Provider: "ollama", Name: "llama3.1:8b", Kind: pricing.KindLocal}
	_, err := generate.NewClient(local, generate.Options{})
	assert.NoError(t, err)
}
