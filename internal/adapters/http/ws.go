package httpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"

	"github.com/sogaelab/sogae-coach/internal/app/practice"
	"github.com/sogaelab/sogae-coach/internal/observability"
)

// wsAction is what the front end sends over the websocket.
type wsAction struct {
	Type        string `json:"type"` // submit_text | submit_audio | restart
	Text        string `json:"text,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// wsEvent is one render instruction for the front end.
type wsEvent struct {
	Type        string            `json:"type"` // user_line | partner_line | audio | feedback | ack | busy | error | done
	Text        string            `json:"text,omitempty"`
	AudioBase64 string            `json:"audio_base64,omitempty"`
	Feedback    *feedbackResponse `json:"feedback,omitempty"`
	On          bool              `json:"on,omitempty"` // busy indicator state
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if s.allowedOrigin == "*" {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = []string{s.allowedOrigin}
	}

	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "unexpected close")

	ctx := r.Context()
	log := observability.LoggerFromContext(ctx)
	log.Info("websocket session opened")

	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Info("websocket session closed")
			} else if ctx.Err() == nil {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var action wsAction
		if err := json.Unmarshal(data, &action); err != nil {
			s.emit(ctx, c, wsEvent{Type: "error", Text: "invalid action"})
			continue
		}

		s.dispatch(ctx, c, action)
	}
}

func (s *Server) dispatch(ctx context.Context, c *websocket.Conn, action wsAction) {
	switch action.Type {
	case "submit_text":
		s.runTurn(ctx, c, func() (*practice.TurnOutcome, error) {
			return s.svc.SubmitTurn(ctx, action.Text)
		})

	case "submit_audio":
		wav, err := base64.StdEncoding.DecodeString(action.AudioBase64)
		if err != nil {
			s.emit(ctx, c, wsEvent{Type: "error", Text: "audio_base64 is not valid base64"})
			return
		}
		s.runTurn(ctx, c, func() (*practice.TurnOutcome, error) {
			return s.svc.SubmitAudio(ctx, wav)
		})

	case "restart":
		if err := s.svc.Restart(); err != nil {
			s.emit(ctx, c, wsEvent{Type: "error", Text: err.Error()})
			return
		}
		s.emit(ctx, c, wsEvent{Type: "ack", Text: "restarted"})

	default:
		s.emit(ctx, c, wsEvent{Type: "error", Text: "unknown action"})
	}
}

// runTurn wraps one exchange in busy-indicator events and renders its
// outcome as a sequence of events.
func (s *Server) runTurn(ctx context.Context, c *websocket.Conn, turn func() (*practice.TurnOutcome, error)) {
	s.emit(ctx, c, wsEvent{Type: "busy", On: true})
	defer s.emit(ctx, c, wsEvent{Type: "busy", On: false})

	out, err := turn()
	if err != nil {
		switch {
		case errors.Is(err, practice.ErrNothingRecognized):
			// Silent degradation, nothing to render.
		case errors.Is(err, practice.ErrBusy):
			s.emit(ctx, c, wsEvent{Type: "error", Text: "a turn is already in flight"})
		case errors.Is(err, practice.ErrSessionDone):
			s.emit(ctx, c, wsEvent{Type: "error", Text: "session is finished, restart to continue"})
		default:
			s.emit(ctx, c, wsEvent{Type: "error", Text: err.Error()})
		}
		return
	}

	s.emit(ctx, c, wsEvent{Type: "user_line", Text: out.UserText})
	if out.PartnerText != "" {
		s.emit(ctx, c, wsEvent{Type: "partner_line", Text: out.PartnerText})
	}
	if len(out.PartnerAudio) > 0 {
		s.emit(ctx, c, wsEvent{
			Type:        "audio",
			AudioBase64: base64.StdEncoding.EncodeToString(out.PartnerAudio),
		})
	}
	if out.Acknowledgment != "" {
		s.emit(ctx, c, wsEvent{Type: "ack", Text: out.Acknowledgment})
	}
	if out.Feedback != nil {
		s.emit(ctx, c, wsEvent{Type: "feedback", Feedback: toFeedbackResponse(out.Feedback)})
	}
	if out.Done {
		s.emit(ctx, c, wsEvent{Type: "done"})
	}
}

func (s *Server) emit(ctx context.Context, c *websocket.Conn, ev wsEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		observability.LoggerFromContext(ctx).Warn("websocket write failed", "error", err)
	}
}
