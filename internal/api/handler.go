package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gsarma/judgerun/internal/execution"
	"github.com/gsarma/judgerun/internal/logger"
	"github.com/gsarma/judgerun/internal/settings"
	"github.com/gsarma/judgerun/internal/testcase"
)

// Runner executes code against the loaded test cases.
type Runner interface {
	Run(ctx context.Context, sess *execution.Session, store execution.Store, req execution.Request) (execution.Report, error)
}

// SettingsStore reads and writes the language and API key.
type SettingsStore interface {
	Get() settings.Settings
	Update(next settings.Settings) (settings.Settings, error)
}

type Handler struct {
	runner   Runner
	sess     *execution.Session
	cases    *testcase.Store
	settings SettingsStore
}

func NewHandler(runner Runner, sess *execution.Session, cases *testcase.Store, st SettingsStore) *Handler {
	return &Handler{runner: runner, sess: sess, cases: cases, settings: st}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PutTestCases replaces the loaded test cases. Any run in flight is cancelled
// first so its results never land on the new set.
func (h *Handler) PutTestCases(c *gin.Context) {
	var body []struct {
		Input          string `json:"input"`
		ExpectedOutput string `json:"expected_output"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cases := make([]testcase.TestCase, len(body))
	for i, b := range body {
		cases[i] = testcase.TestCase{Input: b.Input, ExpectedOutput: b.ExpectedOutput}
	}
	h.sess.Reset()
	h.cases.Load(cases)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(cases)})
}

func (h *Handler) GetTestCases(c *gin.Context) {
	c.JSON(http.StatusOK, h.casesView())
}

func (h *Handler) casesView() gin.H {
	return gin.H{
		"test_cases": h.cases.Snapshot(),
		"run_label":  h.cases.RunLabel(),
		"all_passed": h.cases.AllPassed(),
		"executing":  h.sess.Executing(),
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get().Masked())
}

// PutSettings stores the language and API key. An omitted api_key keeps the
// current one.
func (h *Handler) PutSettings(c *gin.Context) {
	var body settings.Settings
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.settings.Update(body)
	if errors.Is(err, settings.ErrUnknownLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.L().Error("save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, saved.Masked())
}

// Run executes the posted code against every loaded test case and waits for
// the outcomes.
//
// Request body:
//
//	{
//	  "code":    "print(input())",
//	  "problem": "1000/A"          // optional, used for usage reporting
//	}
func (h *Handler) Run(c *gin.Context) {
	var body struct {
		Code    string `json:"code"`
		Problem string `json:"problem"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := h.settings.Get()
	report, err := h.runner.Run(c.Request.Context(), h.sess, h.cases, execution.Request{
		Code:        body.Code,
		Language:    cfg.Language,
		APIKey:      cfg.APIKey,
		ProblemSlug: body.Problem,
		UserAgent:   c.Request.UserAgent(),
	})

	switch {
	case errors.Is(err, execution.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "api limit reached"})
		return
	case errors.Is(err, execution.ErrPreconditionMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.cases.RunLabel()})
		return
	case errors.Is(err, execution.ErrAborted):
		c.JSON(http.StatusOK, gin.H{"aborted": true, "report": report})
		return
	}

	resp := h.casesView()
	resp["report"] = report
	if err != nil {
		resp["error"] = "execution failed"
	}
	c.JSON(http.StatusOK, resp)
}

// CancelRun cancels the run in flight, if any.
func (h *Handler) CancelRun(c *gin.Context) {
	wasExecuting := h.sess.Executing()
	h.sess.Reset()
	c.JSON(http.StatusOK, gin.H{"cancelled": wasExecuting})
}
