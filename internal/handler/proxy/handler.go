package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freerange/chatwidget/backend/pkg/utils"
)

// Handler is the intermediary relay endpoint: it accepts {message} from
// the widget, forwards it to the upstream backend under a timeout and maps
// failures onto gateway statuses. A successful upstream body passes
// through untouched.
type Handler struct {
	upstreamURL string
	timeout     time.Duration
	client      *http.Client
}

// New targets the upstream backend at baseURL with the given per-request
// budget.
func New(baseURL string, timeout time.Duration) *Handler {
	return &Handler{
		upstreamURL: strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		client:      &http.Client{},
	}
}

// RegisterRoutes mounts the relay route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleRelay)
}

func (h *Handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"question": payload.Message})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.upstreamURL+"/ask", bytes.NewReader(body))
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "failed to get response from upstream")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			utils.RespondError(w, http.StatusGatewayTimeout, "request timed out")
			return
		}
		log.Printf("[proxy] upstream request failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "failed to get response from upstream")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[proxy] upstream answered %d", resp.StatusCode)
		utils.RespondError(w, http.StatusBadGateway, "failed to get response from upstream")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[proxy] streaming upstream body: %v", err)
	}
}
