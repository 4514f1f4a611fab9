package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/freerange/chatwidget/backend/internal/model/chat"
	"github.com/freerange/chatwidget/backend/internal/store"
)

const (
	sessionIDKey      = "userSessionId"
	messagesKeyPrefix = "chat_messages_"

	// A conversation goes stale once its last message is a full day old.
	maxIdle = 24 * time.Hour

	greeting = "Hello! How can I help you today?"
)

// ErrNoSession means Append or RecentHistory ran before LoadOrCreate.
var ErrNoSession = errors.New("session: no active session")

// Manager owns session identity and the stored message log, deciding on
// load whether the previous conversation is resumed or replaced.
type Manager struct {
	store store.Store
	now   func() time.Time
	intn  func(n int) int

	mu      sync.RWMutex
	session chat.Session
}

// NewManager wires a Manager to the given key-value store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st, now: time.Now, intn: rand.Intn}
}

// LoadOrCreate resumes the persisted session when its last message is less
// than 24 hours old, and otherwise replaces it with a fresh one seeded
// with a single bot greeting. A read or parse failure on the stored state
// counts as absence and falls through to the fresh path; it is never
// surfaced to the caller.
func (m *Manager) LoadOrCreate(ctx context.Context) (chat.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, messages := m.loadStored(ctx)

	if id != "" && !m.expired(messages) {
		m.session = chat.Session{ID: id, Messages: messages}
		return m.snapshot(), nil
	}

	if id != "" {
		// Replace rather than repair: the stale log is dropped wholesale.
		if err := m.store.Delete(ctx, messagesKey(id)); err != nil {
			log.Printf("[session] dropping stale log for %s: %v", id, err)
		}
	}

	fresh := chat.Session{
		ID: m.generateID(),
		Messages: []chat.Message{{
			Role:      chat.RoleBot,
			Content:   greeting,
			Timestamp: m.now().UnixMilli(),
		}},
	}
	if err := m.persist(ctx, fresh); err != nil {
		return chat.Session{}, err
	}

	m.session = fresh
	return m.snapshot(), nil
}

// Append records one turn and immediately re-persists the full log under
// the current session id. It must be called for every turn, user and bot
// alike.
func (m *Manager) Append(ctx context.Context, message chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.ID == "" {
		return ErrNoSession
	}

	m.session.Messages = append(m.session.Messages, message)

	raw, err := json.Marshal(m.session.Messages)
	if err != nil {
		return fmt.Errorf("encode message log: %w", err)
	}
	return m.store.Set(ctx, messagesKey(m.session.ID), string(raw))
}

// RecentHistory returns the last n messages of the current log, or all of
// them when fewer exist.
func (m *Manager) RecentHistory(n int) []chat.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := m.session.Messages
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	return append([]chat.Message(nil), messages...)
}

// ID returns the active session id, or empty before LoadOrCreate.
func (m *Manager) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ID
}

// Current returns a copy of the active session.
func (m *Manager) Current() chat.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Manager) snapshot() chat.Session {
	return chat.Session{
		ID:       m.session.ID,
		Messages: append([]chat.Message(nil), m.session.Messages...),
	}
}

func (m *Manager) loadStored(ctx context.Context) (string, []chat.Message) {
	id, ok, err := m.store.Get(ctx, sessionIDKey)
	if err != nil || !ok || id == "" {
		return "", nil
	}

	raw, ok, err := m.store.Get(ctx, messagesKey(id))
	if err != nil || !ok {
		return id, nil
	}

	var messages []chat.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		log.Printf("[session] corrupt message log for %s, starting over: %v", id, err)
		return id, nil
	}
	return id, messages
}

// expired checks the timestamp of the last stored message, not the log's
// creation time. An empty log counts as expired.
func (m *Manager) expired(messages []chat.Message) bool {
	if len(messages) == 0 {
		return true
	}
	last := time.UnixMilli(messages[len(messages)-1].Timestamp)
	return m.now().Sub(last) >= maxIdle
}

// generateID derives an id from the local wall clock plus a random 4-digit
// suffix. Uniqueness is probabilistic; collisions are accepted.
func (m *Manager) generateID() string {
	return fmt.Sprintf("%s_%04d", m.now().Format("20060102150405"), 1000+m.intn(9000))
}

// persist writes the session id and its log together so the two never
// drift apart.
func (m *Manager) persist(ctx context.Context, s chat.Session) error {
	raw, err := json.Marshal(s.Messages)
	if err != nil {
		return fmt.Errorf("encode message log: %w", err)
	}
	if err := m.store.Set(ctx, sessionIDKey, s.ID); err != nil {
		return fmt.Errorf("store session id: %w", err)
	}
	if err := m.store.Set(ctx, messagesKey(s.ID), string(raw)); err != nil {
		return fmt.Errorf("store message log: %w", err)
	}
	return nil
}

func messagesKey(sessionID string) string {
	return messagesKeyPrefix + sessionID
}
