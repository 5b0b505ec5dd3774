// Package speech adapts Gemini's audio capabilities to the Transcriber and
// Synthesizer ports.
package speech

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiSpeech struct {
	client   *genai.Client
	sttModel string
	ttsModel string
}

func NewGeminiSpeech(client *genai.Client, sttModel, ttsModel string) *GeminiSpeech {
	return &GeminiSpeech{
		client:   client,
		sttModel: sttModel,
		ttsModel: ttsModel,
	}
}

// Transcribe implements domain.Transcriber. The recording is sent as an
// inline audio part next to a transcription instruction; the model's text
// output is the transcript. An empty transcript is not an error, it just
// means nothing was recognized.
func (g *GeminiSpeech) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	parts := []*genai.Part{
		genai.NewPartFromText(fmt.Sprintf(
			"Transcribe this recording verbatim. The language is %s. "+
				"Return only the transcript text, with no commentary. "+
				"If nothing intelligible was said, return an empty string.", language)),
		genai.NewPartFromBytes(wav, "audio/wav"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.sttModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}

	return strings.TrimSpace(res.Text()), nil
}

// Synthesize implements domain.Synthesizer using a Gemini TTS model with a
// prebuilt voice.
func (g *GeminiSpeech) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	res, err := g.client.Models.GenerateContent(ctx, g.ttsModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini synthesize: %w", err)
	}

	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("gemini synthesize: no audio in response")
}
