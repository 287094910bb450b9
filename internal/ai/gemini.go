package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/streakedin/streakedin/internal/model"
)

// GeminiConfig configures the REST client.
type GeminiConfig struct {
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	Generation GenerationConfig
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	client *resty.Client
	model  string
	apiKey string
	gen    GenerationConfig
}

func NewGemini(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &GeminiClient{client: c, model: cfg.Model, apiKey: cfg.APIKey, gen: cfg.Generation}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt as a single user turn.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return g.call(ctx, []geminiContent{{Parts: []geminiPart{{Text: prompt}}}})
}

// Chat sends the role-tagged history followed by message.
func (g *GeminiClient) Chat(ctx context.Context, history []Turn, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, t := range history {
		contents = append(contents, geminiContent{Role: geminiRole(t.Role), Parts: []geminiPart{{Text: t.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})
	return g.call(ctx, contents)
}

func (g *GeminiClient) call(ctx context.Context, contents []geminiContent) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("gemini: api key not configured")
	}
	body := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.gen.Temperature,
			TopK:            g.gen.TopK,
			TopP:            g.gen.TopP,
			MaxOutputTokens: g.gen.MaxOutputTokens,
		},
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("model", g.model).
		SetQueryParam("key", g.apiKey).
		SetBody(&body).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var out geminiResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func geminiRole(r model.ChatRole) string {
	if r == model.RoleAssistant {
		return "model"
	}
	return "user"
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
