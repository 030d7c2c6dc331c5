package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smart-search-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceProvider_Generate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "rewritten query"}},
			},
		})
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("hf-key", srv.URL, "meta-llama/Llama-3.1-8B-Instruct")
	out, err := p.Generate(context.Background(), "hello", llm.WithTemperature(0), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "rewritten query", out)

	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", got["model"])
	assert.Equal(t, float64(0), got["temperature"])
	assert.Equal(t, float64(64), got["max_tokens"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hello", first["content"])
}

func TestHuggingFaceProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: llm.ErrEmptyResponse},
		{name: "error status", status: http.StatusUnauthorized, body: `{"error":"bad token"}`, wantMsg: "status 401"},
		{name: "error payload", status: http.StatusOK, body: `{"error":{"message":"model is loading"}}`, wantMsg: "model is loading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHuggingFaceProvider("", srv.URL, "m").Generate(context.Background(), "hi")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestHuggingFaceProvider_NoKeyNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	out, err := NewHuggingFaceProvider("", srv.URL, "m").Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
