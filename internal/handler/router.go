package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/freerange/chatwidget/backend/internal/handler/chat"
	"github.com/freerange/chatwidget/backend/internal/handler/proxy"
	suggestionHandler "github.com/freerange/chatwidget/backend/internal/handler/suggestion"
	middlewarePkg "github.com/freerange/chatwidget/backend/internal/middleware"
	suggestionModel "github.com/freerange/chatwidget/backend/internal/model/suggestion"
	"github.com/freerange/chatwidget/backend/internal/session"
	"github.com/freerange/chatwidget/backend/internal/service/turn"
)

// NewRouter wires HTTP routes to core services. relayProxy is nil when no
// backend base URL is configured; the intermediary route is then absent
// and turn endpoints answer 503.
func NewRouter(sessions *session.Manager, turns *turn.Service, suggestions suggestionModel.Store, relayProxy *proxy.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(sessions, turns).RegisterRoutes(api)
		suggestionHandler.New(suggestions, sessions).RegisterRoutes(api)

		if relayProxy != nil {
			relayProxy.RegisterRoutes(api)
		}
	})

	return r
}
