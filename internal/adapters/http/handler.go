// Package httpadapter exposes the practice session to the web front end:
// a small JSON API plus a websocket render-event stream.
package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sogaelab/sogae-coach/internal/app/practice"
	"github.com/sogaelab/sogae-coach/internal/domain"
)

type Server struct {
	svc           *practice.Service
	allowedOrigin string
}

func NewServer(svc *practice.Service, allowedOrigin string) http.Handler {
	s := &Server{svc: svc, allowedOrigin: allowedOrigin}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(withObservability)
	r.Use(withCORS(allowedOrigin))

	r.Get("/healthz", s.handleHealthz)

	// The single in-memory session.
	r.Get("/session", s.handleGetSession)
	r.Post("/session/turns", s.handleSubmitTurn)
	r.Post("/session/audio", s.handleSubmitAudio)
	r.Post("/session/restart", s.handleRestart)

	// Websocket render-event stream for the interactive front end.
	r.Get("/ws", s.handleWebSocket)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type submitTurnRequest struct {
	Text string `json:"text"`
}

type submitAudioRequest struct {
	AudioBase64 string `json:"audio_base64"`
}

type feedbackResponse struct {
	Strengths        string `json:"strengths,omitempty"`
	Improvements     string `json:"improvements,omitempty"`
	NaturalnessScore string `json:"naturalness_score,omitempty"`
	ClosingLine      string `json:"closing_line,omitempty"`
	Freeform         string `json:"freeform,omitempty"`
}

type turnResponse struct {
	UserText           string            `json:"user_text"`
	PartnerText        string            `json:"partner_text,omitempty"`
	PartnerAudioBase64 string            `json:"partner_audio_base64,omitempty"`
	Acknowledgment     string            `json:"acknowledgment,omitempty"`
	Feedback           *feedbackResponse `json:"feedback,omitempty"`
	Done               bool              `json:"done"`
}

type turnEntry struct {
	UserText    string `json:"user_text,omitempty"`
	PartnerText string `json:"partner_text,omitempty"`
}

type sessionResponse struct {
	Turns    []turnEntry       `json:"turns"`
	Done     bool              `json:"done"`
	Feedback *feedbackResponse `json:"feedback,omitempty"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()

	resp := sessionResponse{
		Turns:    make([]turnEntry, 0, len(snap.Turns)),
		Done:     snap.Done,
		Feedback: toFeedbackResponse(snap.Feedback),
	}
	for _, t := range snap.Turns {
		resp.Turns = append(resp.Turns, turnEntry{
			UserText:    t.UserText,
			PartnerText: t.PartnerText,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req submitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.svc.SubmitTurn(r.Context(), req.Text)
	if err != nil {
		writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTurnResponse(out))
}

func (s *Server) handleSubmitAudio(w http.ResponseWriter, r *http.Request) {
	var req submitAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	wav, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		badRequest(w, "audio_base64 is not valid base64")
		return
	}

	out, err := s.svc.SubmitAudio(r.Context(), wav)
	if err != nil {
		if errors.Is(err, practice.ErrNothingRecognized) {
			// Silent degradation: the recording produced nothing usable.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTurnResponse(out))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Restart(); err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restarted"})
}

// ─────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────

func toFeedbackResponse(f *domain.FeedbackReport) *feedbackResponse {
	if f == nil {
		return nil
	}
	if f.IsFreeform() {
		return &feedbackResponse{Freeform: f.Freeform}
	}
	return &feedbackResponse{
		Strengths:        f.Strengths,
		Improvements:     f.Improvements,
		NaturalnessScore: f.NaturalnessScore,
		ClosingLine:      f.ClosingLine,
	}
}

func toTurnResponse(out *practice.TurnOutcome) turnResponse {
	resp := turnResponse{
		UserText:       out.UserText,
		PartnerText:    out.PartnerText,
		Acknowledgment: out.Acknowledgment,
		Feedback:       toFeedbackResponse(out.Feedback),
		Done:           out.Done,
	}
	if len(out.PartnerAudio) > 0 {
		resp.PartnerAudioBase64 = base64.StdEncoding.EncodeToString(out.PartnerAudio)
	}
	return resp
}

// writeTurnError maps service errors to HTTP statuses. Collaborator
// failures surface as a visible error but never kill the session.
func writeTurnError(w http.ResponseWriter, err error) {
	var collabErr *practice.CollaboratorError

	switch {
	case errors.Is(err, practice.ErrEmptyInput):
		badRequest(w, "text is required")
	case errors.Is(err, practice.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a turn is already in flight"})
	case errors.Is(err, practice.ErrSessionDone):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session is finished, restart to continue"})
	case errors.As(err, &collabErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": collabErr.Error()})
	default:
		internalError(w, err)
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
