package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/streakedin/streakedin/internal/model"
)

const assistantInstruction = "You are StreakedIn's productivity assistant. Help the user plan goals, " +
	"break work into tasks and build habits. Keep answers short and practical."

// GenAIClient uses the Google Gen AI SDK against the Gemini API.
type GenAIClient struct {
	client *genai.Client
	model  string
	gen    GenerationConfig
}

func NewGenAI(ctx context.Context, apiKey, modelName string, gen GenerationConfig) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("genai: api key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GenAIClient{client: client, model: modelName, gen: gen}, nil
}

func (g *GenAIClient) config(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.gen.Temperature),
		TopP:            genai.Ptr(g.gen.TopP),
		TopK:            genai.Ptr(float32(g.gen.TopK)),
		MaxOutputTokens: int32(g.gen.MaxOutputTokens),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return cfg
}

func (g *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config(""))
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	return firstText(resp)
}

func (g *GenAIClient) Chat(ctx context.Context, history []Turn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.RoleUser
		if t.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: t.Text}}})
	}
	contents = append(contents, genai.Text(message)...)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config(assistantInstruction))
	if err != nil {
		return "", fmt.Errorf("genai chat: %w", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	var b strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("genai: empty response")
	}
	return b.String(), nil
}
