package testcase_test

import (
	"testing"

	"github.com/gsarma/judgerun/internal/code"
	"github.com/gsarma/judgerun/internal/testcase"
)

func loaded() *testcase.Store {
	s := testcase.NewStore()
	s.Load([]testcase.TestCase{
		{Input: "1 2", ExpectedOutput: "3"},
		{Input: "3 4", ExpectedOutput: "7"},
	})
	return s
}

func TestStore_LoadAndInputs(t *testing.T) {
	s := loaded()
	in := s.Inputs()
	if len(in) != 2 || in[0] != "1 2" || in[1] != "3 4" {
		t.Errorf("unexpected inputs %v", in)
	}
	for _, tc := range s.Snapshot() {
		if tc.Time != "0" || tc.Memory != "0" || tc.Output != "" {
			t.Errorf("expected fresh test case, got %+v", tc)
		}
	}
}

func TestStore_ApplyAndAllPassed(t *testing.T) {
	s := loaded()
	if s.AllPassed() {
		t.Error("empty outputs should not pass")
	}
	err := s.Apply([]code.Outcome{
		{Output: "3\n", Time: "0.01", Memory: "1.00"},
		{Output: " 7 ", Time: "0.02", Memory: "1.50"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.AllPassed() {
		t.Error("expected trimmed outputs to pass")
	}
	if s.Verdict() != "Accepted" {
		t.Errorf("expected Accepted, got %q", s.Verdict())
	}
	if got := s.Snapshot()[1]; got.Time != "0.02" || got.Memory != "1.50" {
		t.Errorf("unexpected figures %+v", got)
	}
}

func TestStore_ApplyLengthMismatch(t *testing.T) {
	s := loaded()
	if err := s.Apply([]code.Outcome{{Output: "3"}}); err == nil {
		t.Fatal("expected error on length mismatch")
	}
	if s.Snapshot()[0].Output != "" {
		t.Error("nothing should be written on mismatch")
	}
}

func TestStore_FailAllAndReset(t *testing.T) {
	s := loaded()
	s.FailAll(code.LabelCompilationError, "bad key")
	for _, tc := range s.Snapshot() {
		if tc.ErrorLabel != code.LabelCompilationError || tc.Output != "bad key" {
			t.Errorf("unexpected test case %+v", tc)
		}
	}
	if s.Verdict() != code.LabelCompilationError {
		t.Errorf("expected run label to be set, got %q", s.Verdict())
	}

	s.Reset()
	for _, tc := range s.Snapshot() {
		if tc.ErrorLabel != "" || tc.Output != "" || tc.Time != "0" {
			t.Errorf("expected reset test case, got %+v", tc)
		}
	}
	if s.RunLabel() != "" {
		t.Error("expected run label cleared")
	}
}

func TestStore_EmptyNeverPasses(t *testing.T) {
	if testcase.NewStore().AllPassed() {
		t.Error("empty store should not pass")
	}
}
