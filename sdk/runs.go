package judgerun

import (
	"context"
	"net/http"
)

// RunsService starts and cancels runs.
type RunsService struct {
	c *Client
}

// Run executes code against the loaded test cases and blocks until the
// outcomes are written. A judge rate limit is returned as an *APIError for
// which IsRateLimited is true.
func (s *RunsService) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	return doRequest[RunResponse](ctx, s.c, http.MethodPost, "/run", req, http.StatusOK)
}

// Cancel stops the run in flight, if any.
func (s *RunsService) Cancel(ctx context.Context) (*CancelResponse, error) {
	return doRequest[CancelResponse](ctx, s.c, http.MethodDelete, "/run", nil, http.StatusOK)
}
