// Package execution runs source code against the loaded test cases on a
// remote judge and writes the normalized outcomes back into the store.
package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/judgerun/internal/code"
	"github.com/gsarma/judgerun/internal/logger"
	"github.com/gsarma/judgerun/internal/usage"
)

var (
	// ErrPreconditionMissing is returned when there is no code or no API key.
	ErrPreconditionMissing = errors.New("execution: no code provided or API key missing")
	// ErrAborted is returned when the run was cancelled or superseded.
	ErrAborted = errors.New("execution: aborted")
	// ErrRateLimited is returned when the judge refused the batch with HTTP 429.
	ErrRateLimited = code.ErrRateLimited
)

const (
	labelPreconditionMissing = "No code provided or API key missing"
	outputExecutionFailed    = "Execution failed. Please try again."
	outputMissingResult      = "No result returned for this test"
	labelRateLimited         = "Rate Limited"
)

// Store is the test-case collection a run reads inputs from and writes
// outcomes into.
type Store interface {
	Inputs() []string
	Reset()
	Apply(outcomes []code.Outcome) error
	FailAll(label, output string)
	SetRunLabel(label string)
	Verdict() string
}

// UsageDispatcher receives a record after each run. It must not block.
type UsageDispatcher interface {
	Dispatch(rec usage.Record)
}

// RetryPolicy bounds how often results still being processed are re-fetched.
type RetryPolicy struct {
	MaxRepolls int
	Delay      time.Duration
}

// Config controls the orchestrator's local waits.
type Config struct {
	// PerTestTimeout is multiplied by the number of test cases to get the
	// wait between submitting and the first fetch.
	PerTestTimeout time.Duration
	// SlowPerTestTimeout replaces PerTestTimeout for slow toolchains.
	SlowPerTestTimeout time.Duration
	CPUTimeLimit       float64
	Repoll             RetryPolicy
}

// DefaultConfig returns the waits used against the public Judge0 CE service.
func DefaultConfig() Config {
	return Config{
		PerTestTimeout:     3 * time.Second,
		SlowPerTestTimeout: 6 * time.Second,
		CPUTimeLimit:       2,
		Repoll:             RetryPolicy{MaxRepolls: 1, Delay: 3 * time.Second},
	}
}

// Request is a single run of Code against every loaded test case.
type Request struct {
	Code        string
	Language    string
	APIKey      string
	ProblemSlug string
	UserAgent   string
}

// Report describes how a run ended.
type Report struct {
	RunID       string  `json:"run_id"`
	State       State   `json:"state"`
	Transitions []State `json:"transitions"`
	Fetches     int     `json:"fetches"`
	Verdict     string  `json:"verdict,omitempty"`
}

// Orchestrator drives runs against a judge backend.
type Orchestrator struct {
	backend code.Backend
	usage   UsageDispatcher
	cfg     Config
}

// New creates an Orchestrator. usage may be nil.
func New(backend code.Backend, usage UsageDispatcher, cfg Config) *Orchestrator {
	return &Orchestrator{backend: backend, usage: usage, cfg: cfg}
}

// run carries the per-run state through the steps of Run.
type run struct {
	tok    *Token
	sess   *Session
	store  Store
	req    Request
	report *Report
	log    *zap.Logger
}

func (r *run) enter(s State) {
	r.report.State = s
	r.report.Transitions = append(r.report.Transitions, s)
	r.log.Debug("run state", zap.Stringer("state", s))
}

// Run supersedes any run in flight on sess, submits req.Code once per test
// case and writes the outcomes into store in test-case order.
//
// ErrPreconditionMissing, ErrRateLimited and ErrAborted are returned as is.
// Malformed judge responses are reported through the store and return nil.
func (o *Orchestrator) Run(ctx context.Context, sess *Session, store Store, req Request) (Report, error) {
	tok := sess.StartNew(ctx)
	defer sess.Finish(tok)

	report := Report{RunID: tok.ID.String()}
	r := &run{
		tok:    tok,
		sess:   sess,
		store:  store,
		req:    req,
		report: &report,
		log:    logger.L().With(zap.String("run_id", report.RunID), zap.String("language", req.Language)),
	}
	r.enter(StateIdle)

	if !sess.Commit(tok, store.Reset) {
		return r.abort()
	}
	if req.Code == "" || req.APIKey == "" {
		sess.Commit(tok, func() { store.SetRunLabel(labelPreconditionMissing) })
		r.log.Info("run rejected", zap.Error(ErrPreconditionMissing))
		return report, ErrPreconditionMissing
	}

	err := o.execute(r)
	if err != nil && (tok.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrAborted)) {
		return r.abort()
	}
	if errors.Is(err, code.ErrRateLimited) {
		r.enter(StateDone)
		r.log.Warn("judge rate limit reached")
		o.dispatchUsage(r, labelRateLimited)
		return report, ErrRateLimited
	}

	var runErr error
	var mErr *code.MalformedResponseError
	switch {
	case err == nil:
	case errors.As(err, &mErr):
		r.log.Warn("malformed judge response", zap.String("op", mErr.Op), zap.String("detail", mErr.Detail))
		if r.commit(func() { store.FailAll(code.LabelCompilationError, mErr.Detail) }) != nil {
			return r.abort()
		}
		r.enter(StateDone)
	default:
		r.log.Error("run failed", zap.Error(err))
		if r.commit(func() { store.FailAll("", outputExecutionFailed) }) != nil {
			return r.abort()
		}
		r.enter(StateDone)
		runErr = fmt.Errorf("execution: %w", err)
	}

	r.log.Info("run finished", zap.String("verdict", report.Verdict), zap.Int("fetches", report.Fetches))
	o.dispatchUsage(r, report.Verdict)
	return report, runErr
}

func (r *run) abort() (Report, error) {
	r.enter(StateAborted)
	r.log.Info("run aborted")
	return *r.report, ErrAborted
}

func (o *Orchestrator) execute(r *run) error {
	inputs := r.store.Inputs()
	if len(inputs) == 0 {
		r.enter(StateDone)
		return r.commit(func() {})
	}

	langID := code.LanguageID(r.req.Language)
	if langID == 0 {
		r.log.Warn("unknown language, submitting without language id")
	}
	src := code.Encode(r.req.Code)
	subs := make([]code.Submission, len(inputs))
	for i, in := range inputs {
		subs[i] = code.Submission{
			LanguageID:   langID,
			SourceCode:   src,
			Stdin:        code.Encode(in),
			CPUTimeLimit: o.cfg.CPUTimeLimit,
		}
	}

	r.enter(StateSubmitting)
	ctx := r.tok.Context()
	batch, err := o.backend.SubmitBatch(ctx, r.req.APIKey, subs)
	if err != nil {
		return err
	}
	tokens := batch.Tokens()

	var results []code.RawResult
	if len(tokens) > 0 {
		r.enter(StateWaiting)
		if err := sleep(ctx, o.deadline(r.req.Language, len(inputs))); err != nil {
			return err
		}
		if results, err = o.fetch(r, tokens, batch.Region); err != nil {
			return err
		}

		r.enter(StateReconciling)
		for attempt := 0; attempt < o.cfg.Repoll.MaxRepolls && anyTransient(results); attempt++ {
			r.log.Debug("results still processing, polling again", zap.Int("attempt", attempt+1))
			r.enter(StateWaiting)
			if err := sleep(ctx, o.cfg.Repoll.Delay); err != nil {
				return err
			}
			if results, err = o.fetch(r, tokens, batch.Region); err != nil {
				return err
			}
			r.enter(StateReconciling)
		}
	}

	outcomes := correlate(len(inputs), batch, results)
	r.enter(StateDone)
	return r.commit(func() {
		if err := r.store.Apply(outcomes); err != nil {
			r.log.Error("write outcomes", zap.Error(err))
			r.store.FailAll("", outputExecutionFailed)
		}
		r.store.SetRunLabel(firstLabel(outcomes))
	})
}

func (o *Orchestrator) fetch(r *run, tokens []string, region string) ([]code.RawResult, error) {
	r.enter(StateFetching)
	r.report.Fetches++
	return o.backend.FetchResults(r.tok.Context(), r.req.APIKey, tokens, region)
}

func (o *Orchestrator) deadline(language string, tests int) time.Duration {
	per := o.cfg.PerTestTimeout
	if code.SlowToolchain(language) && o.cfg.SlowPerTestTimeout > 0 {
		per = o.cfg.SlowPerTestTimeout
	}
	return per * time.Duration(tests)
}

// commit writes through the session so a superseded run never touches the
// store. The verdict is captured under the same lock.
func (r *run) commit(fn func()) error {
	ok := r.sess.Commit(r.tok, func() {
		fn()
		r.report.Verdict = r.store.Verdict()
	})
	if !ok {
		return ErrAborted
	}
	return nil
}

func (o *Orchestrator) dispatchUsage(r *run, status string) {
	if o.usage == nil {
		return
	}
	o.usage.Dispatch(usage.Record{
		RunID:       r.report.RunID,
		Status:      status,
		ProblemSlug: r.req.ProblemSlug,
		Code:        r.req.Code,
		Language:    r.req.Language,
		UserAgent:   r.req.UserAgent,
		At:          time.Now(),
	})
}

// correlate matches results to test cases through the token each test case's
// submission received. The judge does not promise to keep submission order.
func correlate(n int, batch code.Batch, results []code.RawResult) []code.Outcome {
	byToken := make(map[string]code.RawResult, len(results))
	for _, res := range results {
		if res.Token != "" {
			byToken[res.Token] = res
		}
	}

	outcomes := make([]code.Outcome, n)
	for i := range outcomes {
		if i >= len(batch.Entries) {
			outcomes[i] = failed(code.LabelRuntimeError, outputMissingResult)
			continue
		}
		entry := batch.Entries[i]
		if entry.Token == "" {
			outcomes[i] = failed(code.LabelCompilationError, entry.Detail)
			continue
		}
		res, ok := byToken[entry.Token]
		if !ok {
			outcomes[i] = failed(code.LabelRuntimeError, outputMissingResult)
			continue
		}
		outcomes[i] = code.Classify(res)
	}
	return outcomes
}

func failed(label, output string) code.Outcome {
	return code.Outcome{ErrorLabel: label, Output: output, Time: "0", Memory: "0"}
}

func anyTransient(results []code.RawResult) bool {
	for _, r := range results {
		if code.Status(r.StatusID).Transient() {
			return true
		}
	}
	return false
}

func firstLabel(outcomes []code.Outcome) string {
	for _, o := range outcomes {
		if o.ErrorLabel != "" {
			return o.ErrorLabel
		}
	}
	return ""
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
