package execution_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/gsarma/judgerun/internal/execution"
)

func cancelCounter(tok *execution.Token) *atomic.Int32 {
	var n atomic.Int32
	context.AfterFunc(tok.Context(), func() { n.Add(1) })
	return &n
}

func TestSession_StartNewCancelsPrevious(t *testing.T) {
	s := execution.NewSession()
	first := s.StartNew(context.Background())
	firstCancels := cancelCounter(first)

	second := s.StartNew(context.Background())
	secondCancels := cancelCounter(second)
	if first.Err() == nil {
		t.Fatal("expected first token to be cancelled")
	}
	if second.Err() != nil {
		t.Fatal("new token should be live")
	}
	if !s.Executing() {
		t.Error("expected executing after StartNew")
	}

	// Further supersession and reset must not cancel the first token again.
	third := s.StartNew(context.Background())
	s.Reset()
	s.Reset()
	s.Finish(first)

	waitFor(t, func() bool { return firstCancels.Load() == 1 && secondCancels.Load() == 1 })
	if firstCancels.Load() != 1 {
		t.Errorf("expected first token cancelled exactly once, got %d", firstCancels.Load())
	}
	if third.Err() == nil {
		t.Error("expected Reset to cancel the current token")
	}
	if s.Executing() {
		t.Error("expected executing false after Reset")
	}
}

func TestSession_FinishOnlyClearsOwnToken(t *testing.T) {
	s := execution.NewSession()
	old := s.StartNew(context.Background())
	current := s.StartNew(context.Background())

	s.Finish(old)
	if !s.Executing() {
		t.Error("finishing a superseded token must not clear the slot")
	}
	if current.Err() != nil {
		t.Error("current token must stay live")
	}

	s.Finish(current)
	if s.Executing() {
		t.Error("expected slot cleared after finishing the current token")
	}
}

func TestSession_Commit(t *testing.T) {
	s := execution.NewSession()
	old := s.StartNew(context.Background())
	current := s.StartNew(context.Background())

	if s.Commit(old, func() { t.Error("superseded token must not commit") }) {
		t.Error("expected Commit to refuse a superseded token")
	}
	ran := false
	if !s.Commit(current, func() { ran = true }) || !ran {
		t.Error("expected current token to commit")
	}

	s.Reset()
	if s.Commit(current, func() { t.Error("cancelled token must not commit") }) {
		t.Error("expected Commit to refuse a cancelled token")
	}
}

func TestSession_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := execution.NewSession()
	tok := s.StartNew(parent)
	cancel()
	if tok.Err() == nil {
		t.Error("expected token to follow its parent context")
	}
}
