package llm_test

import (
	"strings"
	"testing"

	"github.com/sogaelab/sogae-coach/internal/adapters/llm"
)

// The instructions carry the wire contract with the model; losing one of
// these markers silently breaks envelope parsing.
func TestPersonaInstructionCarriesEnvelopeSchema(t *testing.T) {
	for _, marker := range []string{`"json_list"`, `"상대방"`, "장점", "개선점", "추천 에프터 멘트", "종료", "끝", "그만"} {
		if !strings.Contains(llm.PersonaInstruction, marker) {
			t.Errorf("persona instruction missing %q", marker)
		}
	}
}

func TestFeedbackInstructionCarriesFeedbackSchema(t *testing.T) {
	for _, marker := range []string{`"json_list"`, `"장점"`, `"개선점"`, `"자연스러움 점수"`, `"추천 에프터 멘트"`} {
		if !strings.Contains(llm.FeedbackInstruction, marker) {
			t.Errorf("feedback instruction missing %q", marker)
		}
	}
}
