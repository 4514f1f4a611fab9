package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/freerange/chatwidget/backend/internal/content"
	"github.com/freerange/chatwidget/backend/internal/model/chat"
	"github.com/freerange/chatwidget/backend/internal/session"
)

// FailureReply is the single user-visible message substituted for any
// relay failure. Raw error text never reaches the end user.
const FailureReply = "I'm sorry, there was an error processing your request."

// historyWindow is how many trailing log entries accompany each question.
const historyWindow = 8

var (
	ErrEmptyQuestion   = errors.New("turn: question is required")
	ErrTurnInFlight    = errors.New("turn: a turn is already in flight")
	ErrTrackingDetails = errors.New("turn: email and order number are required")
)

// Relay carries one question upstream. The relay package provides the
// production client.
type Relay interface {
	Send(ctx context.Context, question, sessionID string, history []chat.Message) (string, error)
}

// Result is what one completed turn hands back to the transport layer.
type Result struct {
	Message  chat.Message
	Segments []content.Segment
}

// Service runs the per-turn control flow: recent history out of the
// session manager, question through the relay, reply through the parser,
// both messages into the persisted log. Turns are serialized; a second
// submission while one is outstanding is rejected.
type Service struct {
	sessions *session.Manager
	relay    Relay
	now      func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewService wires the orchestrator to its session manager and relay.
func NewService(sessions *session.Manager, relay Relay) *Service {
	return &Service{sessions: sessions, relay: relay, now: time.Now}
}

// Ask runs one user question end to end. Relay failures are logged and
// degraded to FailureReply; they never surface as errors here, so the
// widget stays interactive after any single-turn failure.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, ErrEmptyQuestion
	}
	if !s.begin() {
		return Result{}, ErrTurnInFlight
	}
	defer s.end()

	// History is captured before this turn's user message lands in the
	// log, so the backend sees the prior conversation only.
	history := s.sessions.RecentHistory(historyWindow)
	sessionID := s.sessions.ID()

	userMessage := chat.Message{
		Role:      chat.RoleUser,
		Content:   question,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.sessions.Append(ctx, userMessage); err != nil {
		return Result{}, err
	}

	reply, err := s.relay.Send(ctx, question, sessionID, history)
	if err != nil {
		log.Printf("[turn] relay failed for session %s: %v", sessionID, err)
		reply = FailureReply
	}

	botMessage := chat.Message{
		Role:      chat.RoleBot,
		Content:   reply,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.sessions.Append(ctx, botMessage); err != nil {
		return Result{}, err
	}

	return Result{Message: botMessage, Segments: content.Parse(reply)}, nil
}

// Track submits the synthetic order-tracking turn built from the track
// order form.
func (s *Service) Track(ctx context.Context, email, orderNumber string) (Result, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(orderNumber) == "" {
		return Result{}, ErrTrackingDetails
	}
	return s.Ask(ctx, fmt.Sprintf("email: %s tracking: %s", email, orderNumber))
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Service) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
