package domain

// Message represents one entry in the conversation log (instruction, user or partner).
// Messages are immutable once appended.
type Message struct {
	ID        MessageID
	Role      Role
	Text      string
	CreatedAt Timestamp
}

// Transcript is the ordered, append-only conversation log. The first message
// is always the persona instruction; later messages alternate freely between
// user and partner. The transcript is the ground truth of the conversation
// even when a partner message turns out to be unparseable.
type Transcript struct {
	msgs []*Message
}

// NewTranscript starts a transcript with the persona instruction as its
// first and only message.
func NewTranscript(instruction *Message) *Transcript {
	return &Transcript{msgs: []*Message{instruction}}
}

// Append adds a message at the end of the transcript.
func (t *Transcript) Append(msg *Message) {
	t.msgs = append(t.msgs, msg)
}

// Messages returns a snapshot copy of the transcript, oldest first.
func (t *Transcript) Messages() []*Message {
	out := make([]*Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Instruction returns the persona instruction message.
func (t *Transcript) Instruction() *Message {
	return t.msgs[0]
}

// Len returns the number of messages, instruction included.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Turn is a single displayable exchange. Turns are derived from the
// transcript on render, never stored independently.
type Turn struct {
	UserText    string
	PartnerText string
}

// FeedbackReport is the structured end-of-session summary. Either the four
// structured fields are populated (NaturalnessScore may be empty), or the
// model returned an unstructured variant and only Freeform is set.
type FeedbackReport struct {
	Strengths        string
	Improvements     string
	NaturalnessScore string
	ClosingLine      string
	Freeform         string
}

// IsFreeform reports whether the report is the degenerate unstructured form.
func (f *FeedbackReport) IsFreeform() bool {
	return f.Freeform != ""
}

// SessionState holds everything the practice session owns: the transcript,
// the done flag and the feedback report, if one was produced. It lives for
// the lifetime of the process and is reset in place on restart.
type SessionState struct {
	Transcript *Transcript
	Done       bool
	Feedback   *FeedbackReport
}
