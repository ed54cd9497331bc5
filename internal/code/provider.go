package code

import "context"

// Submission is a single program run requested from the judge.
// LanguageID 0 means the language is unknown and is left out of the body.
type Submission struct {
	LanguageID   int     `json:"language_id,omitempty"`
	SourceCode   string  `json:"source_code"`
	Stdin        string  `json:"stdin"`
	CPUTimeLimit float64 `json:"cpu_time_limit"`
}

// BatchEntry is one element of a batch submit response. Token is empty when
// the judge rejected that submission; Detail then holds its error payload.
type BatchEntry struct {
	Token  string
	Detail string
}

// Batch is the accepted form of a batch submission.
type Batch struct {
	Entries []BatchEntry
	// Region is the region the judge reported handling the batch in.
	Region string
}

// Tokens returns the non-empty submission tokens in submission order.
func (b Batch) Tokens() []string {
	tokens := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		if e.Token != "" {
			tokens = append(tokens, e.Token)
		}
	}
	return tokens
}

// RawResult is a submission result as returned by the judge. Encoded fields
// are pointers so an absent field is never decoded.
type RawResult struct {
	Token         string   `json:"token"`
	StatusID      int      `json:"status_id"`
	Stdout        *string  `json:"stdout"`
	Stderr        *string  `json:"stderr"`
	CompileOutput *string  `json:"compile_output"`
	Description   *string  `json:"description"`
	Time          *string  `json:"time"`
	Memory        *float64 `json:"memory"`
}

// Outcome is the normalized result of one test. An empty ErrorLabel means the
// program ran without a judgment.
type Outcome struct {
	ErrorLabel string `json:"error_label"`
	Output     string `json:"output"`
	Time       string `json:"time"`
	Memory     string `json:"memory"`
}

// Backend defines the two remote operations the execution orchestrator needs.
type Backend interface {
	SubmitBatch(ctx context.Context, apiKey string, subs []Submission) (Batch, error)
	FetchResults(ctx context.Context, apiKey string, tokens []string, region string) ([]RawResult, error)
}
