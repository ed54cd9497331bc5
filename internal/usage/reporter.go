// Package usage reports what was run to an analytics sink. Reporting is
// best-effort: failures are logged and dropped.
package usage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gsarma/judgerun/internal/logger"
)

// Record describes one finished run.
type Record struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	ProblemSlug string    `json:"problem_slug"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	UserAgent   string    `json:"user_agent"`
	At          time.Time `json:"at"`
}

// Reporter defines the interface each usage sink must implement.
type Reporter interface {
	Report(ctx context.Context, rec Record) error
}

// Dispatcher sends records to a Reporter in the background.
type Dispatcher struct {
	reporter Reporter
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher returns a Dispatcher that gives each report up to timeout.
func NewDispatcher(r Reporter, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{reporter: r, timeout: timeout}
}

// Dispatch reports rec on its own goroutine and returns immediately.
func (d *Dispatcher) Dispatch(rec Record) {
	if d == nil || d.reporter == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				logger.L().Warn("usage reporter panicked", zap.Any("panic", p), zap.String("run_id", rec.RunID))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.reporter.Report(ctx, rec); err != nil {
			logger.L().Debug("usage report dropped", zap.String("run_id", rec.RunID), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched report has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
