package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekochat-companion/server/internal/agent/graph/prompts"
	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

// fakeOllama serves /api/tags and /api/generate with canned bodies.
type fakeOllama struct {
	tags        atomic.Value
	generate    string
	lastPrompt  atomic.Value
	generations atomic.Int32
}

func (f *fakeOllama) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			tags, _ := f.tags.Load().(string)
			_, _ = w.Write([]byte(tags))
		case "/api/generate":
			f.generations.Add(1)
			var body struct {
				Prompt string `json:"prompt"`
			}
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
				return
			}
			f.lastPrompt.Store(body.Prompt)
			_, _ = w.Write([]byte(f.generate))
		default:
			http.NotFound(w, r)
		}
	}
}

func newFake(tags, generate string) *fakeOllama {
	f := &fakeOllama{generate: generate}
	f.tags.Store(tags)
	return f
}

func newTestClient(t *testing.T, fake *fakeOllama) *Client {
	t.Helper()
	logx.Silence()

	p, _ := newTestOllama(t, fake.handler(t))
	r, err := prompts.NewRenderer(context.Background(), "你是一只猫")
	require.NoError(t, err)
	return NewClient(p, r, model.DefaultBackendConfig())
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name  string
		tags  string
		model string
		want  bool
	}{
		{"substring match", `{"models":[{"name":"qwen2.5:latest-q4"}]}`, "qwen2.5:latest", true},
		{"default model", `{"models":[{"name":"qwen2.5:latest"}]}`, "", true},
		{"absent model", `{"models":[{"name":"qwen2.5:latest-q4"}]}`, "llama3", false},
		{"empty list", `{"models":[]}`, "qwen2.5:latest", false},
		{"missing models field", `{}`, "qwen2.5:latest", false},
		{"undecodable body", `not json`, "qwen2.5:latest", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, newFake(tt.tags, ""))
			matched, ok := c.CheckAvailability(context.Background(), tt.model)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Contains(t, matched, "qwen2.5:latest")
			} else {
				assert.Empty(t, matched)
			}
		})
	}
}

func TestCheckAvailability_Unreachable(t *testing.T) {
	logx.Silence()
	p, srv := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	r, err := prompts.NewRenderer(context.Background(), "")
	require.NoError(t, err)
	c := NewClient(p, r, model.DefaultBackendConfig())

	_, ok := c.CheckAvailability(context.Background(), "qwen2.5:latest")
	assert.False(t, ok)
}

func TestGenerate_NotLoaded(t *testing.T) {
	fake := newFake(`{"models":[{"name":"qwen2.5:latest"}]}`, `{"response":"hi"}`)
	c := newTestClient(t, fake)

	assert.Equal(t, SentinelNotLoaded, c.Generate(context.Background(), "", "你好"))
	assert.Zero(t, fake.generations.Load())
}

// mustMatch runs CheckAvailability for the default model and requires a match.
func mustMatch(t *testing.T, c *Client) string {
	t.Helper()
	matched, ok := c.CheckAvailability(context.Background(), "")
	require.True(t, ok)
	return matched
}

func TestGenerate_ReturnsText(t *testing.T) {
	fake := newFake(`{"models":[{"name":"qwen2.5:latest"}]}`, `{"response":"hi"}`)
	c := newTestClient(t, fake)
	matched := mustMatch(t, c)

	assert.Equal(t, "hi", c.Generate(context.Background(), matched, "你好"))
	assert.Equal(t, "系统设定：你是一只猫\n用户消息：你好\n请以猫娘喵喵的身份回复：", fake.lastPrompt.Load())
}

func TestGenerate_MissingResponse(t *testing.T) {
	fake := newFake(`{"models":[{"name":"qwen2.5:latest"}]}`, `{"done":true}`)
	c := newTestClient(t, fake)
	matched := mustMatch(t, c)

	assert.Equal(t, SentinelNoResponse, c.Generate(context.Background(), matched, "你好"))
}

func TestGenerate_TransportFailure(t *testing.T) {
	logx.Silence()
	ctx := context.Background()
	fake := newFake(`{"models":[{"name":"qwen2.5:latest"}]}`, "")
	p, srv := newTestOllama(t, fake.handler(t))
	r, err := prompts.NewRenderer(ctx, "")
	require.NoError(t, err)
	c := NewClient(p, r, model.DefaultBackendConfig())

	matched := mustMatch(t, c)
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	got := c.Generate(ctx, matched, "你好")
	assert.True(t, strings.HasPrefix(got, "Error: "+errx.BackendErrorMessage+": "), got)
	assert.Contains(t, got, "/api/generate")
	assert.Contains(t, got, host)
	assert.Contains(t, got, "connect")
}

func TestCheckAvailability_KeepsNoState(t *testing.T) {
	fake := newFake(`{"models":[{"name":"qwen2.5:latest"}]}`, `{"response":"hi"}`)
	c := newTestClient(t, fake)
	ctx := context.Background()

	matched := mustMatch(t, c)
	fake.tags.Store(`{"models":[]}`)
	_, ok := c.CheckAvailability(ctx, "")
	assert.False(t, ok)

	// readiness belongs to the caller: a failed probe does not revoke an id
	// the caller still holds, and an empty id is never sent.
	assert.Equal(t, "hi", c.Generate(ctx, matched, "你好"))
	assert.Equal(t, SentinelNotLoaded, c.Generate(ctx, "", "你好"))
	assert.EqualValues(t, 1, fake.generations.Load())
}
