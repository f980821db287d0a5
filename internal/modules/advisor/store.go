package advisor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/finsight/internal/domain"
)

// transcript is one chat session
type transcript struct {
	messages []domain.ChatMessage
	touched  time.Time
}

// Store keeps chat transcripts in memory, keyed by session id.
// Transcripts are lost on restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*transcript
	now      func() time.Time
}

// NewStore creates an empty transcript store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*transcript),
		now:      time.Now,
	}
}

// Open starts a new session seeded with greeting and returns its id
func (s *Store) Open(greeting string) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &transcript{
		messages: []domain.ChatMessage{{Role: domain.RoleAssistant, Content: greeting}},
		touched:  s.now(),
	}
	return id
}

// Append adds a message and returns a copy of the whole transcript
func (s *Store) Append(id string, msg domain.ChatMessage) ([]domain.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	t.messages = append(t.messages, msg)
	t.touched = s.now()
	return append([]domain.ChatMessage(nil), t.messages...), true
}

// Messages returns a copy of the transcript
func (s *Store) Messages(id string) ([]domain.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return append([]domain.ChatMessage(nil), t.messages...), true
}

// Clear removes a session, reporting whether it existed
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Prune drops sessions idle for longer than maxIdle and returns how many went
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, t := range s.sessions {
		if t.touched.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of open sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
