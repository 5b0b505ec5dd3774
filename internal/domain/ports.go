package domain

import "context"

// CompletionOptions tune a single completion request.
type CompletionOptions struct {
	Temperature     float32
	MaxOutputTokens int32

	// ExtraInstruction is appended to the persona instruction for one-shot
	// requests that bypass the normal turn flow (the feedback request).
	ExtraInstruction string
}

// ChatCompleter defines how the core application talks to the LLM service.
// The response is the raw text blob the model produced; interpreting it is
// the envelope parser's job.
type ChatCompleter interface {
	Complete(ctx context.Context, transcript []*Message, opts CompletionOptions) (string, error)
}

// Transcriber converts recorded speech to text. An empty string with a nil
// error means nothing was recognized.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

// Synthesizer converts text to audio bytes for playback.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
}
