package conversation

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Session is the authoritative append-only history for one thread. It is
// never truncated; trimmed views for the model are derived elsewhere.
type Session struct {
	ThreadID string

	mu    sync.RWMutex
	turns Conversation
}

// Append adds turns to the end of the session history. Turns become visible
// to readers in the exact order appended.
func (s *Session) Append(turns ...*Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
	log.Debug().
		Str("thread_id", s.ThreadID).
		Int("appended", len(turns)).
		Int("total", len(s.turns)).
		Msg("conversation: turns appended")
}

// Turns returns a copy of the session history. The returned slice is safe to
// iterate while other goroutines append; the *Turn values themselves are
// immutable by convention.
func (s *Session) Turns() Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Conversation, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns in the session.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// SaveToFile writes a snapshot of the session history as JSON or YAML,
// depending on the file extension.
func (s *Session) SaveToFile(filename string) error {
	turns := s.Turns()

	var (
		b   []byte
		err error
	)
	if isYAMLFile(filename) {
		b, err = yaml.Marshal(turns)
	} else {
		b, err = json.MarshalIndent(turns, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

func isYAMLFile(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// Manager owns sessions keyed by thread id. Sessions are created on first
// use and live for the process lifetime.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for threadID, creating it when absent. An
// empty threadID allocates a fresh one.
func (m *Manager) Session(threadID string) *Session {
	if threadID == "" {
		threadID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[threadID]
	if !ok {
		s = &Session{ThreadID: threadID}
		m.sessions[threadID] = s
		log.Debug().Str("thread_id", threadID).Msg("conversation: session created")
	}
	return s
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
