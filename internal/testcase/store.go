// Package testcase holds the ordered set of test cases for the problem being
// worked on, together with the results of the latest run.
package testcase

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gsarma/judgerun/internal/code"
)

// TestCase is one input/expected-output pair and the result of running it.
// An empty ErrorLabel means the last run produced no judgment.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Output         string `json:"output"`
	ErrorLabel     string `json:"error_label,omitempty"`
	Time           string `json:"time"`
	Memory         string `json:"memory"`
}

// Store is an in-memory, index-stable list of test cases. Entries are only
// added or removed by Load; runs update results in place.
type Store struct {
	mu       sync.RWMutex
	cases    []TestCase
	runLabel string
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces every test case and clears the run-level label.
func (s *Store) Load(cases []TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = make([]TestCase, len(cases))
	for i, tc := range cases {
		s.cases[i] = TestCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput, Time: "0", Memory: "0"}
	}
	s.runLabel = ""
}

// Len returns the number of test cases.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Inputs returns the stdin of every test case in order.
func (s *Store) Inputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.cases))
	for i, tc := range s.cases {
		out[i] = tc.Input
	}
	return out
}

// Snapshot returns a copy of every test case.
func (s *Store) Snapshot() []TestCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TestCase, len(s.cases))
	copy(out, s.cases)
	return out
}

// Reset clears the results of the previous run.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cases {
		s.cases[i].Output = ""
		s.cases[i].ErrorLabel = ""
		s.cases[i].Time = "0"
		s.cases[i].Memory = "0"
	}
	s.runLabel = ""
}

// Apply writes outcomes by index. It fails without writing anything if the
// number of outcomes does not match the number of test cases.
func (s *Store) Apply(outcomes []code.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(outcomes) != len(s.cases) {
		return fmt.Errorf("testcase: %d outcomes for %d test cases", len(outcomes), len(s.cases))
	}
	for i, o := range outcomes {
		s.cases[i].Output = o.Output
		s.cases[i].ErrorLabel = o.ErrorLabel
		s.cases[i].Time = o.Time
		s.cases[i].Memory = o.Memory
	}
	return nil
}

// FailAll marks every test case with the same label and output.
func (s *Store) FailAll(label, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cases {
		s.cases[i].ErrorLabel = label
		s.cases[i].Output = output
	}
	if label != "" {
		s.runLabel = label
	}
}

// SetRunLabel sets the label describing the run as a whole.
func (s *Store) SetRunLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLabel = label
}

// RunLabel returns the label describing the run as a whole.
func (s *Store) RunLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runLabel
}

// AllPassed reports whether there is at least one test case and every output
// matches its expected output, ignoring surrounding whitespace.
func (s *Store) AllPassed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.cases) == 0 {
		return false
	}
	for _, tc := range s.cases {
		if strings.TrimSpace(tc.ExpectedOutput) != strings.TrimSpace(tc.Output) {
			return false
		}
	}
	return true
}

// Verdict summarizes the run: the run-level label if set, otherwise Accepted
// or Wrong Answer.
func (s *Store) Verdict() string {
	if label := s.RunLabel(); label != "" {
		return label
	}
	if s.AllPassed() {
		return "Accepted"
	}
	return code.LabelWrongAnswer
}
