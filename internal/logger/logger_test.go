package logger_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/gsarma/judgerun/internal/logger"
)

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "error"} {
		if _, err := logger.New(logger.Config{Level: lvl, Format: "json"}); err != nil {
			t.Errorf("level %q: unexpected error: %v", lvl, err)
		}
	}
	if _, err := logger.New(logger.Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestSetAndL(t *testing.T) {
	l := zap.NewExample()
	logger.Set(l)
	defer logger.Set(zap.NewNop())
	if logger.L() != l {
		t.Error("expected L to return the installed logger")
	}
}
