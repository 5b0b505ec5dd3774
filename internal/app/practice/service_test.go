package practice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sogaelab/sogae-coach/internal/adapters/llm"
	"github.com/sogaelab/sogae-coach/internal/adapters/speech"
	"github.com/sogaelab/sogae-coach/internal/app/practice"
	"github.com/sogaelab/sogae-coach/internal/domain"
)

const (
	dialogueEnvelope = `{"json_list":[{"User":"안녕하세요!","상대방":"안녕하세요! 반가워요"}]}`
	feedbackEnvelope = `{"json_list":[{"장점":"밝았어요","개선점":"짧게 말해보세요","추천 에프터 멘트":"다음에 또 봐요"}]}`
)

func newTestService(completer domain.ChatCompleter) *practice.Service {
	return practice.NewService(
		completer,
		&speech.MockTranscriber{Text: "안녕하세요!"},
		&speech.MockSynthesizer{Audio: []byte("wav-bytes")},
		practice.Config{
			PersonaInstruction:  llm.PersonaInstruction,
			FeedbackInstruction: llm.FeedbackInstruction,
			Voice:               "Kore",
			Language:            "ko-KR",
		},
	)
}

func TestSubmitTurnDisplaysPartnerLine(t *testing.T) {
	svc := newTestService(llm.NewMockLLM(dialogueEnvelope))

	out, err := svc.SubmitTurn(context.Background(), "안녕하세요!")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if out.PartnerText != "안녕하세요! 반가워요" {
		t.Fatalf("unexpected partner text: %q", out.PartnerText)
	}
	if len(out.PartnerAudio) == 0 {
		t.Error("expected synthesized audio")
	}
	if out.Done {
		t.Error("session should not be done after a regular turn")
	}

	snap := svc.Snapshot()
	if len(snap.Turns) != 1 {
		t.Fatalf("expected 1 turn in snapshot, got %d", len(snap.Turns))
	}
	if snap.Turns[0].UserText != "안녕하세요!" || snap.Turns[0].PartnerText != "안녕하세요! 반가워요" {
		t.Fatalf("unexpected snapshot turn: %+v", snap.Turns[0])
	}
}

func TestTerminationTriggerEndsSession(t *testing.T) {
	mock := llm.NewMockLLM(feedbackEnvelope)
	svc := newTestService(mock)

	out, err := svc.SubmitTurn(context.Background(), "종료")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if out.Acknowledgment != "대화 종료! 수고했어요 😊" {
		t.Fatalf("unexpected acknowledgment: %q", out.Acknowledgment)
	}
	if out.PartnerText != "" {
		t.Errorf("termination must not render model dialogue, got %q", out.PartnerText)
	}
	if !out.Done {
		t.Error("expected done after termination")
	}
	if out.Feedback == nil || out.Feedback.Strengths != "밝았어요" {
		t.Fatalf("expected feedback report, got %+v", out.Feedback)
	}
	if mock.Calls() != 1 {
		t.Fatalf("expected exactly one feedback-only completion, got %d", mock.Calls())
	}

	// No further turns after termination.
	if _, err := svc.SubmitTurn(context.Background(), "또 안녕하세요"); !errors.Is(err, practice.ErrSessionDone) {
		t.Fatalf("expected ErrSessionDone, got %v", err)
	}
}

func TestTerminationSurvivesFeedbackFailure(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.FailWith(errors.New("quota exceeded"))
	svc := newTestService(mock)

	out, err := svc.SubmitTurn(context.Background(), "그만")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if !out.Done {
		t.Error("session must end even when the feedback request fails")
	}
	if out.Feedback != nil {
		t.Errorf("expected no feedback, got %+v", out.Feedback)
	}
	if out.Acknowledgment == "" {
		t.Error("expected fixed acknowledgment")
	}
}

func TestCompleterFailureAbandonsTurn(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.FailWith(errors.New("network down"))
	svc := newTestService(mock)

	_, err := svc.SubmitTurn(context.Background(), "안녕하세요!")

	var collabErr *practice.CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}

	snap := svc.Snapshot()
	if snap.Done {
		t.Error("done flag must be unchanged after a failed turn")
	}
	// The user message stays in the transcript, no partner message follows.
	if len(snap.Turns) != 1 || snap.Turns[0].PartnerText != "" {
		t.Fatalf("expected lone user line in snapshot, got %+v", snap.Turns)
	}

	// The session continues: the next attempt can succeed.
	svc2 := newTestService(llm.NewMockLLM(dialogueEnvelope))
	if _, err := svc2.SubmitTurn(context.Background(), "다시 안녕하세요"); err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
}

func TestModelInitiatedFeedbackEndsSession(t *testing.T) {
	svc := newTestService(llm.NewMockLLM(feedbackEnvelope))

	out, err := svc.SubmitTurn(context.Background(), "오늘 즐거웠어요")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if !out.Done {
		t.Error("expected done when the model returns feedback mid-conversation")
	}
	if out.Feedback == nil {
		t.Fatal("expected feedback report")
	}
	if out.Acknowledgment != "" {
		t.Error("model-initiated feedback must not render the termination acknowledgment")
	}

	snap := svc.Snapshot()
	if !snap.Done || snap.Feedback == nil {
		t.Fatalf("snapshot not updated: %+v", snap)
	}
}

func TestUnparseableResponseIsDroppedFromDisplay(t *testing.T) {
	svc := newTestService(llm.NewMockLLM("the model felt chatty today"))

	out, err := svc.SubmitTurn(context.Background(), "안녕하세요!")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	if out.PartnerText != "" || out.Feedback != nil || out.Done {
		t.Fatalf("expected silently dropped turn, got %+v", out)
	}
}

func TestSynthesisFailureIsSilent(t *testing.T) {
	svc := practice.NewService(
		llm.NewMockLLM(dialogueEnvelope),
		&speech.MockTranscriber{},
		&speech.MockSynthesizer{Err: errors.New("tts down")},
		practice.Config{PersonaInstruction: llm.PersonaInstruction},
	)

	out, err := svc.SubmitTurn(context.Background(), "안녕하세요!")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if out.PartnerText == "" {
		t.Fatal("text display must not depend on synthesis")
	}
	if out.PartnerAudio != nil {
		t.Fatal("expected no audio after synthesis failure")
	}
}

func TestSubmitAudioTranscribesAndRuns(t *testing.T) {
	svc := newTestService(llm.NewMockLLM(dialogueEnvelope))

	out, err := svc.SubmitAudio(context.Background(), []byte("fake-wav"))
	if err != nil {
		t.Fatalf("SubmitAudio failed: %v", err)
	}
	if out.UserText != "안녕하세요!" {
		t.Fatalf("expected transcribed text as user text, got %q", out.UserText)
	}
}

func TestSubmitAudioTranscriptionFailureIsSilent(t *testing.T) {
	svc := practice.NewService(
		llm.NewMockLLM(dialogueEnvelope),
		&speech.MockTranscriber{Err: errors.New("stt down")},
		&speech.MockSynthesizer{},
		practice.Config{PersonaInstruction: llm.PersonaInstruction},
	)

	if _, err := svc.SubmitAudio(context.Background(), []byte("fake-wav")); !errors.Is(err, practice.ErrNothingRecognized) {
		t.Fatalf("expected ErrNothingRecognized, got %v", err)
	}

	if snap := svc.Snapshot(); len(snap.Turns) != 0 {
		t.Fatalf("failed transcription must not touch the transcript, got %+v", snap.Turns)
	}
}

func TestEmptyInputRejected(t *testing.T) {
	svc := newTestService(llm.NewMockLLM())

	if _, err := svc.SubmitTurn(context.Background(), "   "); !errors.Is(err, practice.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRestartResetsSession(t *testing.T) {
	svc := newTestService(llm.NewMockLLM(dialogueEnvelope, feedbackEnvelope))

	if _, err := svc.SubmitTurn(context.Background(), "안녕하세요!"); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if _, err := svc.SubmitTurn(context.Background(), "종료"); err != nil {
		t.Fatalf("termination failed: %v", err)
	}

	if err := svc.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	snap := svc.Snapshot()
	if len(snap.Turns) != 0 || snap.Done || snap.Feedback != nil {
		t.Fatalf("expected pristine session after restart, got %+v", snap)
	}

	// The restarted session accepts turns again.
	if _, err := svc.SubmitTurn(context.Background(), "다시 안녕하세요"); err != nil {
		t.Fatalf("turn after restart failed: %v", err)
	}
}

// blockingCompleter parks inside Complete until released, to exercise the
// one-turn-in-flight guard.
type blockingCompleter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCompleter) Complete(ctx context.Context, transcript []*domain.Message, opts domain.CompletionOptions) (string, error) {
	close(b.entered)
	<-b.release
	return dialogueEnvelope, nil
}

func TestConcurrentTurnRejectedAsBusy(t *testing.T) {
	completer := &blockingCompleter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(completer)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SubmitTurn(context.Background(), "첫 번째")
		done <- err
	}()

	<-completer.entered

	if _, err := svc.SubmitTurn(context.Background(), "두 번째"); !errors.Is(err, practice.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := svc.Restart(); !errors.Is(err, practice.ErrBusy) {
		t.Fatalf("expected ErrBusy from restart mid-turn, got %v", err)
	}

	close(completer.release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight turn failed: %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	cases := map[string]bool{
		"종료":     true,
		"끝":      true,
		"그만":     true,
		" 종료 ":   true,
		"종료요":    false,
		"그만할까요": false,
		"end":    false,
		"":       false,
	}

	for text, want := range cases {
		if got := practice.IsTerminal(text); got != want {
			t.Errorf("IsTerminal(%q) = %v, want %v", text, got, want)
		}
	}
}
