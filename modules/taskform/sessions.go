package taskform

import (
	"sync"
	"time"
)

// DefaultSessionIdle is how long an unused session form is kept.
const DefaultSessionIdle = 24 * time.Hour

type sessionForm struct {
	form     *Form
	lastUsed time.Time
}

// Sessions keeps one Form per browser session.
// Forms idle for longer than the idle timeout are closed on the next lookup.
type Sessions struct {
	mu      sync.Mutex
	newForm func() *Form
	idle    time.Duration
	forms   map[string]*sessionForm
	now     func() time.Time
}

// NewSessions creates an empty registry. newForm builds the form of a new session.
func NewSessions(newForm func() *Form, idle time.Duration) *Sessions {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{
		newForm: newForm,
		idle:    idle,
		forms:   make(map[string]*sessionForm),
		now:     time.Now,
	}
}

// Get returns the form of the session, creating it on first use.
func (s *Sessions) Get(id string) *Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.forms {
		if key != id && now.Sub(entry.lastUsed) > s.idle {
			entry.form.Close()
			delete(s.forms, key)
		}
	}

	entry, ok := s.forms[id]
	if !ok {
		entry = &sessionForm{form: s.newForm()}
		s.forms[id] = entry
	}
	entry.lastUsed = now
	return entry.form
}

// Len returns the number of live session forms.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// Close stops every session's success timer and forgets all sessions.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.forms {
		entry.form.Close()
		delete(s.forms, key)
	}
}
