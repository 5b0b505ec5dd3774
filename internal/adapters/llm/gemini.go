package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/sogaelab/sogae-coach/internal/domain"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient wraps an already-configured genai client as a
// domain.ChatCompleter.
func NewGeminiClient(client *genai.Client, modelName string) *GeminiClient {
	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}
}

// Complete implements domain.ChatCompleter.
//
// The transcript's instruction message becomes the system instruction, the
// rest becomes the conversation contents. Output is forced to JSON so the
// model cannot wrap the envelope in prose or code fences.
func (g *GeminiClient) Complete(
	ctx context.Context,
	transcript []*domain.Message,
	opts domain.CompletionOptions,
) (string, error) {
	var system string
	var contents []*genai.Content
	for _, m := range transcript {
		switch m.Role {
		case domain.RoleInstruction:
			system = m.Text
		case domain.RolePartner:
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		}
	}

	if opts.ExtraInstruction != "" {
		system = system + "\n\n" + opts.ExtraInstruction
	}

	temp := opts.Temperature

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   opts.MaxOutputTokens,
		ResponseMIMEType:  "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}
