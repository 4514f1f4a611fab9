package suggestion

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freerange/chatwidget/backend/internal/model/suggestion"
	"github.com/freerange/chatwidget/backend/internal/session"
	"github.com/freerange/chatwidget/backend/pkg/utils"
)

// Handler serves the suggestion chips shown in a fresh conversation.
type Handler struct {
	store    suggestion.Store
	sessions *session.Manager
}

func New(store suggestion.Store, sessions *session.Manager) *Handler {
	return &Handler{store: store, sessions: sessions}
}

// RegisterRoutes mounts the suggestion route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/suggestions", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	// Chips disappear once the log holds more than the greeting.
	show := len(h.sessions.Current().Messages) <= 1

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"suggestions":     h.store.List(),
		"showSuggestions": show,
	})
}
