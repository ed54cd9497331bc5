package judgerun_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	judgerun "github.com/gsarma/judgerun/sdk"
)

func TestClient_LoadAndRun(t *testing.T) {
	var loaded []judgerun.TestCaseInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token on %s %s", r.Method, r.URL.Path)
		}
		switch r.Method + " " + r.URL.Path {
		case "PUT /testcases":
			json.NewDecoder(r.Body).Decode(&loaded)
			json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "count": len(loaded)})
		case "POST /run":
			var body judgerun.RunRequest
			json.NewDecoder(r.Body).Decode(&body)
			if body.Code != "print(3)" {
				t.Errorf("unexpected code %q", body.Code)
			}
			w.Write([]byte(`{"test_cases":[{"input":"1 2","expected_output":"3","output":"3\n","time":"0.01","memory":"1.00"}],
				"all_passed":true,"report":{"run_id":"r1","state":"done","fetches":1,"verdict":"Accepted"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := judgerun.New(srv.URL+"/", "tok")
	lr, err := c.TestCases.Load(context.Background(), []judgerun.TestCaseInput{{Input: "1 2", ExpectedOutput: "3"}})
	if err != nil || lr.Count != 1 || len(loaded) != 1 {
		t.Fatalf("load: %+v, %v", lr, err)
	}

	resp, err := c.Runs.Run(context.Background(), judgerun.RunRequest{Code: "print(3)"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !resp.AllPassed || resp.Report.Verdict != "Accepted" || resp.TestCases[0].Output != "3\n" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"api limit reached"}`))
	}))
	defer srv.Close()

	_, err := judgerun.New(srv.URL, "").Runs.Run(context.Background(), judgerun.RunRequest{Code: "x"})
	if !judgerun.IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if err.(*judgerun.APIError).Message != "api limit reached" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_NoTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header")
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	h, err := judgerun.New(srv.URL, "").Health(context.Background())
	if err != nil || h.Status != "ok" {
		t.Fatalf("health: %+v, %v", h, err)
	}
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := judgerun.New(srv.URL, "bad").Settings.Get(context.Background())
	apiErr, ok := err.(*judgerun.APIError)
	if !ok || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Unauthorized" {
		t.Errorf("unexpected error %v", err)
	}
}
