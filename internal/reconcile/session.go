package reconcile

import "sync"

// Session carries the token the reconciler currently works against. The
// token only changes through the reconciler's explicit operations.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns a session that starts with the given token, which may
// be empty.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}
