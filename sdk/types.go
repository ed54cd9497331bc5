package judgerun

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- Test cases ---

// TestCaseInput is one test case to load.
type TestCaseInput struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
}

// TestCase is a loaded test case with the outcome of the last run.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Output         string `json:"output"`
	ErrorLabel     string `json:"error_label,omitempty"`
	Time           string `json:"time"`
	Memory         string `json:"memory"`
}

// TestCasesResponse is returned by GET /testcases and by runs.
type TestCasesResponse struct {
	TestCases []TestCase `json:"test_cases"`
	RunLabel  string     `json:"run_label"`
	AllPassed bool       `json:"all_passed"`
	Executing bool       `json:"executing"`
}

// LoadTestCasesResponse is returned by PUT /testcases.
type LoadTestCasesResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// --- Settings ---

// Settings holds the language and judge API key. Keys read back from the
// server are masked.
type Settings struct {
	Language string `json:"language"`
	APIKey   string `json:"api_key,omitempty"`
}

// --- Runs ---

// RunRequest is the body of POST /run.
type RunRequest struct {
	Code    string `json:"code"`
	Problem string `json:"problem,omitempty"`
}

// Report describes how a run ended.
type Report struct {
	RunID       string   `json:"run_id"`
	State       string   `json:"state"`
	Transitions []string `json:"transitions"`
	Fetches     int      `json:"fetches"`
	Verdict     string   `json:"verdict,omitempty"`
}

// RunResponse is returned by POST /run. Aborted is set when the run was
// cancelled or superseded; the test cases are then left as they were.
type RunResponse struct {
	TestCasesResponse
	Aborted bool   `json:"aborted,omitempty"`
	Report  Report `json:"report"`
	Error   string `json:"error,omitempty"`
}

// CancelResponse is returned by DELETE /run.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}
