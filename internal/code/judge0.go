package code

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// RegionHeader selects, and echoes, the Judge0 region serving a request.
	RegionHeader = "X-Judge0-Region"
	// DefaultRegion lets the judge pick a region.
	DefaultRegion = "AUTO"

	resultFields = "token,stdout,stderr,status,compile_output,status_id,time,memory"
)

// ErrRateLimited is returned when the judge answers a submission with HTTP 429.
var ErrRateLimited = errors.New("judge0: rate limited")

// MalformedResponseError is returned when the judge answered with something
// other than the expected collection. Detail is the judge's own error text.
type MalformedResponseError struct {
	Op     string
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("judge0: malformed %s response: %s", e.Op, e.Detail)
}

// Judge0Config holds the connection settings for Judge0 CE.
// Submissions and result fetches may go to different hosts.
// AuthToken is optional; it is sent as X-Auth-Token for self-hosted instances.
type Judge0Config struct {
	SubmitURL string        `json:"submit_url"`
	FetchURL  string        `json:"fetch_url"`
	AuthToken string        `json:"auth_token,omitempty"`
	Timeout   time.Duration `json:"-"`
}

// Judge0Gateway calls the Judge0 CE batch submission API.
type Judge0Gateway struct {
	submitURL string
	fetchURL  string
	authToken string
	base      *http.Client
}

var _ Backend = (*Judge0Gateway)(nil)

// NewJudge0Gateway constructs a Judge0Gateway from the given config.
func NewJudge0Gateway(cfg Judge0Config) *Judge0Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Judge0Gateway{
		submitURL: strings.TrimRight(cfg.SubmitURL, "/"),
		fetchURL:  strings.TrimRight(cfg.FetchURL, "/"),
		authToken: cfg.AuthToken,
		base:      &http.Client{Timeout: timeout},
	}
}

// client returns an HTTP client that attaches apiKey as a bearer token.
func (g *Judge0Gateway) client(apiKey string) *http.Client {
	return &http.Client{
		Timeout: g.base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"}),
			Base:   g.base.Transport,
		},
	}
}

// SubmitBatch submits one program run per Submission. Source code and stdin
// must already be encoded with Encode.
func (g *Judge0Gateway) SubmitBatch(ctx context.Context, apiKey string, subs []Submission) (Batch, error) {
	bodyJSON, err := json.Marshal(map[string]any{"submissions": subs})
	if err != nil {
		return Batch{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.submitURL+"/submissions/batch?base64_encoded=true", bytes.NewReader(bodyJSON))
	if err != nil {
		return Batch{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	g.setHeaders(req)

	resp, err := g.client(apiKey).Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("submit to judge0: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Batch{}, ErrRateLimited
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Batch{}, fmt.Errorf("read judge0 response: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var obj map[string]any
		if json.Unmarshal(raw, &obj) != nil {
			return Batch{}, fmt.Errorf("decode judge0 response (HTTP %d): %w", resp.StatusCode, err)
		}
		return Batch{}, &MalformedResponseError{Op: "submit", Detail: errorDetail(obj, "Unknown error")}
	}
	if entries == nil {
		return Batch{}, &MalformedResponseError{Op: "submit", Detail: "Unknown error"}
	}

	batch := Batch{
		Entries: make([]BatchEntry, len(entries)),
		Region:  resp.Header.Get(RegionHeader),
	}
	if batch.Region == "" {
		batch.Region = DefaultRegion
	}
	for i, e := range entries {
		var tok struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(e, &tok) == nil && tok.Token != "" {
			batch.Entries[i].Token = tok.Token
			continue
		}
		batch.Entries[i].Detail = string(e)
	}
	return batch, nil
}

// FetchResults fetches the current state of every token from region.
func (g *Judge0Gateway) FetchResults(ctx context.Context, apiKey string, tokens []string, region string) ([]RawResult, error) {
	if region == "" {
		region = DefaultRegion
	}
	q := url.Values{}
	q.Set("base64_encoded", "true")
	q.Set("tokens", strings.Join(tokens, ","))
	q.Set("fields", resultFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.fetchURL+"/submissions/batch?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(RegionHeader, region)
	g.setHeaders(req)

	resp, err := g.client(apiKey).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch from judge0: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Submissions []*RawResult `json:"submissions"`
		Error       *string      `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode judge0 response (HTTP %d): %w", resp.StatusCode, err)
	}
	if body.Submissions == nil {
		detail := LabelCompilationError
		if s, ok := decodeField(body.Error); ok {
			detail = s
		}
		return nil, &MalformedResponseError{Op: "fetch", Detail: detail}
	}

	results := make([]RawResult, 0, len(body.Submissions))
	for _, r := range body.Submissions {
		if r == nil {
			continue
		}
		results = append(results, *r)
	}
	return results, nil
}

func (g *Judge0Gateway) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if g.authToken != "" {
		req.Header.Set("X-Auth-Token", g.authToken)
	}
}

func errorDetail(obj map[string]any, def string) string {
	if obj == nil {
		return def
	}
	switch v := obj["error"].(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return def
}
