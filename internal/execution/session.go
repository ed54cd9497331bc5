package execution

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Token is the cancellation handle of one run. Every network call made for
// the run is bound to its context.
type Token struct {
	ID     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context that is cancelled when the run is superseded or reset.
func (t *Token) Context() context.Context { return t.ctx }

// Err reports why the token's context was cancelled, if it was.
func (t *Token) Err() error { return t.ctx.Err() }

// Session owns the single run slot of one editor. At most one token is
// current; starting a new run cancels the previous one first.
type Session struct {
	mu        sync.Mutex
	current   *Token
	executing bool
}

func NewSession() *Session {
	return &Session{}
}

// StartNew cancels the current token, if any, and installs a fresh one
// derived from parent.
func (s *Session) StartNew(parent context.Context) *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	tok := &Token{ID: uuid.New(), ctx: ctx, cancel: cancel}
	s.current = tok
	s.executing = true
	return tok
}

// Reset cancels the current token and empties the slot.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
	s.executing = false
}

// Finish releases tok at the end of its run. The slot is only cleared if tok
// is still the current token.
func (s *Session) Finish(tok *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == tok {
		s.current = nil
		s.executing = false
	}
	tok.cancel()
}

// Executing reports whether a run currently holds the slot.
func (s *Session) Executing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executing
}

// Commit runs fn only if tok is still current and not cancelled. The session
// lock is held while fn runs, so no other run can start in between.
func (s *Session) Commit(tok *Token, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != tok || tok.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}
