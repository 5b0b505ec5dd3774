// Package practice orchestrates the single blind-date practice session:
// it owns the session state, runs one exchange per user input, detects the
// end-of-session triggers and requests the closing feedback report.
package practice

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sogaelab/sogae-coach/internal/domain"
	"github.com/sogaelab/sogae-coach/internal/envelope"
	"github.com/sogaelab/sogae-coach/internal/observability"
)

// Sampling parameters mirror the two request shapes the persona prompt was
// tuned against: regular turns run warm, the feedback request runs cold.
const (
	turnTemperature     = 0.7
	turnMaxOutputTokens = 700

	feedbackTemperature     = 0.2
	feedbackMaxOutputTokens = 500
)

// closingAcknowledgment is the fixed line rendered when the user ends the
// session. It is never taken from the model.
const closingAcknowledgment = "대화 종료! 수고했어요 😊"

// Config carries the session-wide settings the service needs.
type Config struct {
	// PersonaInstruction is the instruction message that opens every
	// transcript. It carries the envelope schema the model must follow.
	PersonaInstruction string

	// FeedbackInstruction is appended for the one-shot feedback request,
	// overriding the persona instruction's dual-mode behavior.
	FeedbackInstruction string

	// Voice is the synthesis voice for partner lines.
	Voice string

	// Language is the transcription language tag, e.g. "ko-KR".
	Language string
}

// Service runs the practice session. One turn executes at a time; a second
// submission while a turn is in flight is rejected with ErrBusy.
type Service struct {
	completer   domain.ChatCompleter
	transcriber domain.Transcriber
	synthesizer domain.Synthesizer
	cfg         Config
	now         func() time.Time

	mu    sync.Mutex
	state *domain.SessionState
}

func NewService(
	completer domain.ChatCompleter,
	transcriber domain.Transcriber,
	synthesizer domain.Synthesizer,
	cfg Config,
) *Service {
	s := &Service{
		completer:   completer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		cfg:         cfg,
		now:         time.Now,
	}
	s.state = s.freshState()
	return s
}

func (s *Service) freshState() *domain.SessionState {
	return &domain.SessionState{
		Transcript: domain.NewTranscript(s.newMessage(domain.RoleInstruction, s.cfg.PersonaInstruction)),
	}
}

func (s *Service) newMessage(role domain.Role, text string) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      role,
		Text:      text,
		CreatedAt: s.now(),
	}
}

// TurnOutcome is what one submission produces for rendering. PartnerText
// and PartnerAudio are set for a regular display turn; Acknowledgment only
// for the explicit termination path; Feedback whenever a report was stored.
type TurnOutcome struct {
	UserText       string
	PartnerText    string
	PartnerAudio   []byte
	Acknowledgment string
	Feedback       *domain.FeedbackReport
	Done           bool
}

// SubmitTurn runs one exchange for the given user text.
//
// The user message is appended first and stays in the transcript no matter
// what happens afterwards. The raw model response is appended as a partner
// message even when it fails to parse: the transcript is the authoritative
// log regardless of parse outcome. A completion failure leaves the
// transcript with the user message only and is returned as a
// *CollaboratorError.
func (s *Service) SubmitTurn(ctx context.Context, text string) (*TurnOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	if s.state.Done {
		return nil, ErrSessionDone
	}

	log := observability.LoggerFromContext(ctx)

	if IsTerminal(text) {
		return s.finishSession(ctx, text), nil
	}

	s.state.Transcript.Append(s.newMessage(domain.RoleUser, text))

	raw, err := s.completer.Complete(ctx, s.state.Transcript.Messages(), domain.CompletionOptions{
		Temperature:     turnTemperature,
		MaxOutputTokens: turnMaxOutputTokens,
	})
	if err != nil {
		log.Error("completion failed", "error", err)
		return nil, &CollaboratorError{Op: "completion", Err: err}
	}

	s.state.Transcript.Append(s.newMessage(domain.RolePartner, raw))

	out := &TurnOutcome{UserText: text}

	res := envelope.Parse(raw)
	switch res.Kind {
	case envelope.KindDisplayTurn:
		out.PartnerText = res.PartnerText
		out.PartnerAudio = s.synthesize(ctx, res.PartnerText)

	case envelope.KindFeedback:
		// The model is allowed to close the session on its own by
		// returning feedback mid-conversation.
		log.Info("model-initiated feedback received")
		s.state.Feedback = res.Feedback
		s.state.Done = true
		out.Feedback = res.Feedback

	case envelope.KindEmpty:
		log.Warn("unparseable model response, nothing to display")
	}

	out.Done = s.state.Done
	return out, nil
}

// SubmitAudio transcribes a recording and runs it through the same turn
// path as typed text. Transcription failures degrade silently: the caller
// gets ErrNothingRecognized and renders nothing.
func (s *Service) SubmitAudio(ctx context.Context, wav []byte) (*TurnOutcome, error) {
	if s.transcriber == nil || len(wav) == 0 {
		return nil, ErrNothingRecognized
	}

	text, err := s.transcriber.Transcribe(ctx, wav, s.cfg.Language)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("transcription failed", "error", err)
		return nil, ErrNothingRecognized
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNothingRecognized
	}

	return s.SubmitTurn(ctx, text)
}

// finishSession handles the explicit termination path: the trigger phrase
// is logged to the transcript for completeness, a one-shot feedback request
// runs, and the session is marked done whether or not that request
// succeeded. Caller holds the lock.
func (s *Service) finishSession(ctx context.Context, trigger string) *TurnOutcome {
	log := observability.LoggerFromContext(ctx)
	log.Info("termination trigger received", "trigger", trigger)

	s.state.Transcript.Append(s.newMessage(domain.RoleUser, trigger))

	if fb := s.requestFeedback(ctx); fb != nil {
		s.state.Feedback = fb
	}
	s.state.Done = true

	return &TurnOutcome{
		UserText:       trigger,
		Acknowledgment: closingAcknowledgment,
		Feedback:       s.state.Feedback,
		Done:           true,
	}
}

// requestFeedback asks the model to summarize the whole transcript into the
// feedback schema. Any failure, network or schema, yields nil: the session
// still ends, just without a report.
func (s *Service) requestFeedback(ctx context.Context) *domain.FeedbackReport {
	log := observability.LoggerFromContext(ctx)

	raw, err := s.completer.Complete(ctx, s.state.Transcript.Messages(), domain.CompletionOptions{
		Temperature:      feedbackTemperature,
		MaxOutputTokens:  feedbackMaxOutputTokens,
		ExtraInstruction: s.cfg.FeedbackInstruction,
	})
	if err != nil {
		log.Error("feedback request failed", "error", err)
		return nil
	}

	res := envelope.Parse(raw)
	if res.Kind != envelope.KindFeedback {
		log.Warn("feedback request returned non-feedback response")
		return nil
	}
	return res.Feedback
}

// synthesize is best effort: a synthesis failure produces no audio and is
// logged, but never blocks the text from rendering.
func (s *Service) synthesize(ctx context.Context, text string) []byte {
	if s.synthesizer == nil {
		return nil
	}
	audio, err := s.synthesizer.Synthesize(ctx, text, s.cfg.Voice)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("synthesis failed", "error", err)
		return nil
	}
	return audio
}

// Restart resets the session to its initial state: transcript back to the
// instruction message only, done flag cleared, feedback discarded.
func (s *Service) Restart() error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	s.state = s.freshState()
	return nil
}

// Snapshot is a renderable view of the session: the displayable turns
// reconstructed from the transcript, the done flag and the feedback report.
type Snapshot struct {
	Turns    []domain.Turn
	Done     bool
	Feedback *domain.FeedbackReport
}

// Snapshot replays the transcript into displayable turns. Partner messages
// are re-parsed through the envelope parser: display turns render, feedback
// and unparseable responses are skipped (feedback renders as its own block,
// not as a chat line). Blocks while a turn is in flight.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var turns []domain.Turn
	for _, m := range s.state.Transcript.Messages() {
		switch m.Role {
		case domain.RoleUser:
			turns = append(turns, domain.Turn{UserText: m.Text})
		case domain.RolePartner:
			res := envelope.Parse(m.Text)
			if res.Kind != envelope.KindDisplayTurn {
				continue
			}
			if n := len(turns); n > 0 && turns[n-1].PartnerText == "" {
				turns[n-1].PartnerText = res.PartnerText
			} else {
				turns = append(turns, domain.Turn{PartnerText: res.PartnerText})
			}
		}
	}

	return Snapshot{
		Turns:    turns,
		Done:     s.state.Done,
		Feedback: s.state.Feedback,
	}
}
