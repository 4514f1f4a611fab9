package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freerange/chatwidget/backend/internal/content"
	"github.com/freerange/chatwidget/backend/internal/session"
	"github.com/freerange/chatwidget/backend/internal/service/turn"
	"github.com/freerange/chatwidget/backend/pkg/utils"
)

// Handler exposes the session and turn endpoints the widget drives.
type Handler struct {
	sessions *session.Manager
	turns    *turn.Service
}

// New creates the chat handler. turns may be nil when no backend is
// configured; turn endpoints then answer 503.
func New(sessions *session.Manager, turns *turn.Service) *Handler {
	return &Handler{sessions: sessions, turns: turns}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleStartSession)
	r.Get("/session/{sessionID}/messages", h.handleMessages)
	r.Post("/turn", h.handleTurn)
	r.Post("/track", h.handleTrack)
}

// handleStartSession resumes or resets the conversation and returns the
// active session with its full log.
func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.LoadOrCreate(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	current := h.sessions.Current()
	if current.ID == "" || current.ID != sessionID {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": current.Messages})
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runTurn(w, r, func() (turn.Result, error) {
		return h.turns.Ask(r.Context(), payload.Question)
	})
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		OrderNumber string `json:"orderNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.runTurn(w, r, func() (turn.Result, error) {
		return h.turns.Track(r.Context(), payload.Email, payload.OrderNumber)
	})
}

func (h *Handler) runTurn(w http.ResponseWriter, r *http.Request, run func() (turn.Result, error)) {
	if h.turns == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "chat backend not configured")
		return
	}

	result, err := run()
	switch {
	case err == nil:
	case errors.Is(err, turn.ErrEmptyQuestion), errors.Is(err, turn.ErrTrackingDetails):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, turn.ErrTurnInFlight):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to process turn")
		return
	}

	segments := make([]segmentDTO, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, toDTO(seg))
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":  result.Message,
		"segments": segments,
	})
}

// segmentDTO flattens the segment union for JSON transport; Kind selects
// which of the remaining fields are meaningful.
type segmentDTO struct {
	Kind      string        `json:"kind"`
	Text      string        `json:"text,omitempty"`
	Runs      []content.Run `json:"runs,omitempty"`
	URLs      []string      `json:"urls,omitempty"`
	BaseLink  string        `json:"baseLink,omitempty"`
	ProductID string        `json:"productId,omitempty"`
	Quantity  int           `json:"quantity,omitempty"`
	Link      string        `json:"link,omitempty"`
	JSON      string        `json:"json,omitempty"`
}

func toDTO(seg content.Segment) segmentDTO {
	switch s := seg.(type) {
	case content.Heading:
		return segmentDTO{Kind: "heading", Text: s.Text}
	case content.Bullet:
		return segmentDTO{Kind: "bullet", Runs: s.Runs}
	case content.TextLine:
		return segmentDTO{Kind: "text", Runs: s.Runs}
	case content.ImageGallery:
		return segmentDTO{Kind: "images", URLs: s.URLs}
	case content.CheckoutAction:
		return segmentDTO{
			Kind:      "checkout",
			BaseLink:  s.BaseLink,
			ProductID: s.ProductID,
			Quantity:  s.Quantity.Value(),
			Link:      s.CheckoutLink(),
		}
	case content.RawBlock:
		return segmentDTO{Kind: "raw", JSON: s.JSON}
	default:
		return segmentDTO{Kind: "text"}
	}
}
