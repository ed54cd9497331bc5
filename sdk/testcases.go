package judgerun

import (
	"context"
	"net/http"
)

// TestCasesService loads and reads test cases.
type TestCasesService struct {
	c *Client
}

// Load replaces the server's test cases. A run in flight is cancelled.
func (s *TestCasesService) Load(ctx context.Context, cases []TestCaseInput) (*LoadTestCasesResponse, error) {
	if cases == nil {
		cases = []TestCaseInput{}
	}
	return doRequest[LoadTestCasesResponse](ctx, s.c, http.MethodPut, "/testcases", cases, http.StatusOK)
}

// Get returns the loaded test cases and the outcome of the last run.
func (s *TestCasesService) Get(ctx context.Context) (*TestCasesResponse, error) {
	return doRequest[TestCasesResponse](ctx, s.c, http.MethodGet, "/testcases", nil, http.StatusOK)
}
