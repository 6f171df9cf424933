package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tieubaoca/questbot-be/types"
)

// Session holds the per-session mutable state: the corpus filename
// selected for deletion, the questions pending from the last extraction
// run and the transcript of the last answering run. Keeping this state
// per session, never on a shared service instance, is what prevents
// concurrent sessions from overwriting each other.
type Session struct {
	ID string

	mu               sync.Mutex
	selectedFile     string
	pendingQuestions []string
	transcript       types.Transcript
}

func (s *Session) SelectedFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedFile
}

func (s *Session) SetSelectedFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFile = name
}

func (s *Session) ClearSelection() {
	s.SetSelectedFile("")
}

func (s *Session) PendingQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pendingQuestions...)
}

// SetPendingQuestions installs a freshly extracted question list and
// empties the transcript: a new extraction starts the run over.
func (s *Session) SetPendingQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingQuestions = append([]string(nil), questions...)
	s.transcript = nil
}

func (s *Session) Transcript() types.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(types.Transcript(nil), s.transcript...)
}

// SetTranscript replaces the transcript wholesale. No merge across runs.
func (s *Session) SetTranscript(transcript types.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(types.Transcript(nil), transcript...)
}

// SessionStore hands out sessions by id, creating them on first use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session with the given id, creating it if needed.
// An empty id gets a fresh session with a generated id.
func (s *SessionStore) Acquire(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return session
	}
	session = &Session{ID: id}
	s.sessions[id] = session
	return session
}
