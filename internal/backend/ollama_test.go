package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) (*Ollama, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := model.DefaultBackendConfig()
	cfg.BaseURL = srv.URL
	p, err := NewOllama(cfg)
	require.NoError(t, err)
	return p, srv
}

func TestNewOllama_RejectsBadScheme(t *testing.T) {
	cfg := model.DefaultBackendConfig()
	cfg.BaseURL = "ftp://localhost:11434"
	_, err := NewOllama(cfg)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindConfig))
}

func TestOllama_ListModels(t *testing.T) {
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"qwen2.5:latest-q4"},{"name":"llama3:8b"}]}`))
	})

	names, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5:latest-q4", "llama3:8b"}, names)
}

func TestOllama_ListModels_MissingField(t *testing.T) {
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"other":[]}`))
	})

	_, err := p.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindMalformed))
}

func TestOllama_ListModels_StatusError(t *testing.T) {
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	})

	_, err := p.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindStatus))
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllama_Generate_RequestBody(t *testing.T) {
	var got map[string]any
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"qwen2.5:latest","response":"喵～","done":true}`))
	})

	text, err := p.Generate(context.Background(), GenerateRequest{
		Model:       "qwen2.5:latest",
		Prompt:      "hello",
		Temperature: 0.8,
		TopP:        0.9,
		MaxTokens:   150,
	})
	require.NoError(t, err)
	assert.Equal(t, "喵～", text)

	assert.Equal(t, "qwen2.5:latest", got["model"])
	assert.Equal(t, "hello", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.InDelta(t, 0.8, got["temperature"], 1e-6)
	assert.InDelta(t, 0.9, got["top_p"], 1e-6)
	assert.EqualValues(t, 150, got["max_tokens"])

	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 150, opts["num_predict"])
}

func TestOllama_Generate_MissingResponse(t *testing.T) {
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	})

	_, err := p.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindMalformed))
}

func TestOllama_Generate_EmptyResponseIsText(t *testing.T) {
	p, _ := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	})

	text, err := p.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestOllama_TransportFailure(t *testing.T) {
	p, srv := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := p.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindTransport))

	_, err = p.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindTransport))
}
