package suggestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/freerange/chatwidget/backend/internal/model/chat"
	model "github.com/freerange/chatwidget/backend/internal/model/suggestion"
	"github.com/freerange/chatwidget/backend/internal/session"
	"github.com/freerange/chatwidget/backend/internal/store"
)

func setupRouter(t *testing.T) (*chi.Mux, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(store.NewMemoryStore())
	if _, err := sessions.LoadOrCreate(context.Background()); err != nil {
		t.Fatalf("LoadOrCreate err: %v", err)
	}
	handler := New(model.NewMemoryStore(model.Seed()), sessions)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, sessions
}

func listSuggestions(t *testing.T, r *chi.Mux) (suggestions []model.Suggestion, show bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Suggestions     []model.Suggestion `json:"suggestions"`
		ShowSuggestions bool               `json:"showSuggestions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Suggestions, body.ShowSuggestions
}

func TestListSeededSuggestions(t *testing.T) {
	r, _ := setupRouter(t)

	suggestions, show := listSuggestions(t, r)
	if len(suggestions) != 4 {
		t.Fatalf("expected 4 seeded chips, got %d", len(suggestions))
	}
	if !show {
		t.Fatal("chips must show for a fresh conversation")
	}
}

func TestChipsHideOnceConversationStarts(t *testing.T) {
	r, sessions := setupRouter(t)

	msg := chat.Message{Role: chat.RoleUser, Content: "hi", Timestamp: 1}
	if err := sessions.Append(context.Background(), msg); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	_, show := listSuggestions(t, r)
	if show {
		t.Fatal("chips must hide once the user has spoken")
	}
}
