// Package envelope decodes the constrained JSON envelope the model is
// instructed to return into one of three outcomes: a displayable partner
// line, a feedback report, or nothing.
package envelope

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sogaelab/sogae-coach/internal/domain"
)

// Kind tags the outcome of parsing one raw model response.
type Kind int

const (
	KindEmpty Kind = iota
	KindDisplayTurn
	KindFeedback
)

// Result is the typed outcome of Parse. PartnerText is set for
// KindDisplayTurn, Feedback for KindFeedback.
type Result struct {
	Kind        Kind
	PartnerText string
	Feedback    *domain.FeedbackReport
}

// dialogueKeys are the keys the model may use for the partner's line.
// "상대방" is the current contract; the others are aliases left over from
// earlier prompts and still show up occasionally.
var dialogueKeys = []string{"상대방", "옥순", "상철"}

// Feedback item keys, fixed by the prompt.
const (
	keyStrengths    = "장점"
	keyImprovements = "개선점"
	keyClosingLine  = "추천 에프터 멘트"
	keyScore        = "자연스러움 점수"
	keyFreeform     = "피드백"
)

// Parse decodes one raw model response. It is pure and total: malformed
// input of any shape degrades to KindEmpty, it never panics and never
// returns an error. Only the last element of the envelope list is
// inspected; the contract guarantees at most one new item per call.
func Parse(raw string) Result {
	var env struct {
		Items []json.RawMessage `json:"json_list"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Result{Kind: KindEmpty}
	}
	if len(env.Items) == 0 {
		return Result{Kind: KindEmpty}
	}

	var last map[string]any
	if err := json.Unmarshal(env.Items[len(env.Items)-1], &last); err != nil {
		return Result{Kind: KindEmpty}
	}

	if hasKeys(last, keyStrengths, keyImprovements, keyClosingLine) {
		return Result{
			Kind: KindFeedback,
			Feedback: &domain.FeedbackReport{
				Strengths:        asText(last[keyStrengths]),
				Improvements:     asText(last[keyImprovements]),
				NaturalnessScore: asText(last[keyScore]),
				ClosingLine:      asText(last[keyClosingLine]),
			},
		}
	}

	if v, ok := last[keyFreeform]; ok {
		return Result{
			Kind:     KindFeedback,
			Feedback: &domain.FeedbackReport{Freeform: asText(v)},
		}
	}

	for _, k := range dialogueKeys {
		if v, ok := last[k]; ok {
			return Result{Kind: KindDisplayTurn, PartnerText: asText(v)}
		}
	}

	return Result{Kind: KindEmpty}
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// asText renders an envelope value as trimmed text. The model sometimes
// returns the naturalness score as a bare number, so non-strings are
// stringified rather than dropped.
func asText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
