// Package session keeps bounded per-session conversation history in
// memory. Nothing survives a restart: the store exists to give the
// generation service short-range context, not to persist chats.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const DefaultMaxTurns = 2

// Turn is one user/assistant exchange. Immutable once appended.
type Turn struct {
	UserQuery string
	Answer    string
}

// Store is a keyed sliding window over recent turns. Mutations on one
// session are serialized; independent sessions never block each other
// beyond the map lookup.
type Store struct {
	mu       sync.RWMutex
	maxTurns int
	sessions map[string]*state
}

type state struct {
	mu    sync.Mutex
	turns []Turn
}

func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		maxTurns: maxTurns,
		sessions: make(map[string]*state),
	}
}

// Create returns a fresh session identifier. The session itself is
// materialized lazily on first append.
func (s *Store) Create() string {
	return uuid.NewString()
}

// History renders the last turns as a "User: .. / Assistant: .."
// transcript. Unknown or empty sessions yield "" and never fail.
func (s *Store) History(sessionID string) string {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.turns) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, turn := range st.turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("User: " + turn.UserQuery + "\n")
		sb.WriteString("Assistant: " + turn.Answer)
	}
	return sb.String()
}

// Append records one exchange, creating the session if needed, then
// evicts the oldest turns beyond the window.
func (s *Store) Append(sessionID, userQuery, answer string) {
	st := s.session(sessionID)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.turns = append(st.turns, Turn{UserQuery: userQuery, Answer: answer})
	if len(st.turns) > s.maxTurns {
		st.turns = st.turns[len(st.turns)-s.maxTurns:]
	}
}

// Clear drops one session's history.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *Store) session(sessionID string) *state {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[sessionID]; ok {
		return st
	}
	st = &state{}
	s.sessions[sessionID] = st
	return st
}
