package speech

import "context"

// MockTranscriber returns a fixed transcript (or error) for tests.
type MockTranscriber struct {
	Text string
	Err  error
}

func (m *MockTranscriber) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// MockSynthesizer returns fixed audio bytes (or error) for tests.
type MockSynthesizer struct {
	Audio []byte
	Err   error
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}
