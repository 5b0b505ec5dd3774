package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sogaelab/sogae-coach/internal/domain"
)

// MockLLM is a scripted domain.ChatCompleter for tests and credential-free
// development. With scripted responses it returns them in order (repeating
// the last one); without, it echoes the user's text back inside a valid
// dialogue envelope.
type MockLLM struct {
	mu        sync.Mutex
	responses []string
	calls     int
	err       error
}

func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{responses: responses}
}

// FailWith makes every following call return err.
func (m *MockLLM) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many completions were requested.
func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockLLM) Complete(
	ctx context.Context,
	transcript []*domain.Message,
	opts domain.CompletionOptions,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return "", m.err
	}

	if len(m.responses) > 0 {
		i := m.calls - 1
		if i >= len(m.responses) {
			i = len(m.responses) - 1
		}
		return m.responses[i], nil
	}

	userText := ""
	for _, msg := range transcript {
		if msg.Role == domain.RoleUser {
			userText = msg.Text
		}
	}

	item := map[string]string{
		"User": userText,
		"상대방":  "그렇군요! 조금 더 얘기해 주실래요?",
	}
	raw, _ := json.Marshal(map[string][]map[string]string{"json_list": {item}})
	return string(raw), nil
}
