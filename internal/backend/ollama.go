package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

// Compile-time interface guard.
var _ Provider = (*Ollama)(nil)

// Ollama talks to an Ollama server over its REST API.
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllama creates an Ollama provider. It does not check connectivity;
// that is what the availability probe is for. A zero cfg.Timeout means
// requests wait until the transport gives up.
func NewOllama(cfg model.BackendConfig) (*Ollama, error) {
	base := cfg.BaseURL
	if base == "" {
		base = model.DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errx.Config("parse ollama url %q: %v", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errx.Config("ollama url %q must be http or https", base)
	}

	return &Ollama{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListModels returns the names under models[*].name from GET /api/tags.
func (p *Ollama) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, errx.Transport(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errx.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, parseStatusError(resp)
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errx.New(err, errx.KindMalformed, errx.MalformedMessage)
	}
	if result.Models == nil {
		return nil, errx.Malformed("models")
	}

	names := make([]string, 0, len(*result.Models))
	for _, m := range *result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Generate posts one non-streaming request to /api/generate.
func (p *Ollama) Generate(ctx context.Context, in GenerateRequest) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       in.Model,
		Prompt:      in.Prompt,
		Stream:      false,
		Temperature: in.Temperature,
		TopP:        in.TopP,
		MaxTokens:   in.MaxTokens,
		Options: generateOptions{
			Temperature: in.Temperature,
			TopP:        in.TopP,
			NumPredict:  in.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errx.Transport(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errx.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", parseStatusError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logx.Warn().Err(err).Msg("undecodable generate response")
		return "", errx.Malformed("response")
	}
	if out.Response == nil {
		return "", errx.Malformed("response")
	}
	return *out.Response, nil
}

// parseStatusError reads an error body ({"error": "..."}) if there is one.
func parseStatusError(resp *http.Response) error {
	msg := resp.Status
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return errx.New(fmt.Errorf("status %d: %s", resp.StatusCode, msg), errx.KindStatus, errx.BackendErrorMessage)
}

// --- Ollama REST API types ---

// generateRequest carries the sampling fields at the top level and again
// under options, which is where Ollama itself reads them.
type generateRequest struct {
	Model       string          `json:"model"`
	Prompt      string          `json:"prompt"`
	Stream      bool            `json:"stream"`
	Temperature float32         `json:"temperature"`
	TopP        float32         `json:"top_p"`
	MaxTokens   int             `json:"max_tokens"`
	Options     generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type listResponse struct {
	Models *[]listModel `json:"models"`
}

type listModel struct {
	Name string `json:"name"`
}
