package usage_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gsarma/judgerun/internal/usage"
)

// stubReporter implements usage.Reporter for tests.
type stubReporter struct {
	reportFn func(ctx context.Context, rec usage.Record) error
}

func (s *stubReporter) Report(ctx context.Context, rec usage.Record) error {
	if s.reportFn != nil {
		return s.reportFn(ctx, rec)
	}
	return nil
}

var _ usage.Reporter = (*stubReporter)(nil)

func TestDispatcher_SwallowsFailures(t *testing.T) {
	var calls atomic.Int32
	r := &stubReporter{reportFn: func(_ context.Context, rec usage.Record) error {
		calls.Add(1)
		if rec.RunID == "panic" {
			panic("boom")
		}
		return errors.New("dashboard down")
	}}
	d := usage.NewDispatcher(r, time.Second)
	d.Dispatch(usage.Record{RunID: "a"})
	d.Dispatch(usage.Record{RunID: "panic"})
	d.Wait()

	if calls.Load() != 2 {
		t.Errorf("expected 2 report calls, got %d", calls.Load())
	}
}

func TestDispatcher_DoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	r := &stubReporter{reportFn: func(ctx context.Context, _ usage.Record) error {
		<-release
		return nil
	}}
	d := usage.NewDispatcher(r, time.Second)

	done := make(chan struct{})
	go func() {
		d.Dispatch(usage.Record{RunID: "slow"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on the reporter")
	}
	close(release)
	d.Wait()
}

func TestDispatcher_NilSafe(t *testing.T) {
	var d *usage.Dispatcher
	d.Dispatch(usage.Record{})
	usage.NewDispatcher(nil, 0).Dispatch(usage.Record{})
}

func TestDashboardReporter_Report(t *testing.T) {
	var posted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/ip", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	})
	mux.HandleFunc("/info/203.0.113.7/json/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7","city":"Pune","readme":"https://ipinfo.io/missingauth"}`))
	})
	mux.HandleFunc("/api/usage", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&posted)
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rep := usage.NewDashboardReporter(usage.DashboardConfig{
		URL:         srv.URL,
		IPLookupURL: srv.URL + "/ip",
		IPInfoURL:   srv.URL + "/info",
	})
	err := rep.Report(context.Background(), usage.Record{
		Status: "Accepted", ProblemSlug: "4/A", Code: "print(1)", Language: "python", UserAgent: "test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userData := posted["userData"].(map[string]any)
	if userData["city"] != "Pune" {
		t.Errorf("expected ip data to be forwarded, got %v", userData)
	}
	if _, ok := userData["readme"]; ok {
		t.Error("readme should be stripped from ip data")
	}
	info := posted["codeInfo"].(map[string]any)
	if info["problemUrl"] != "https://codeforces.com/problemset/problem/4/A" || info["status"] != "Accepted" {
		t.Errorf("unexpected codeInfo %v", info)
	}
}

func TestDashboardReporter_LookupFallback(t *testing.T) {
	var posted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/usage", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&posted)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rep := usage.NewDashboardReporter(usage.DashboardConfig{
		URL:         srv.URL,
		IPLookupURL: srv.URL + "/ip",
		IPInfoURL:   srv.URL + "/info",
	})
	if err := rep.Report(context.Background(), usage.Record{Status: "Wrong Answer"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userData := posted["userData"].(map[string]any)
	if userData["country"] != "Unknown" {
		t.Errorf("expected Unknown fallback, got %v", userData)
	}
	info := posted["codeInfo"].(map[string]any)
	if !strings.HasSuffix(info["problemUrl"].(string), "/Unknown") {
		t.Errorf("expected Unknown slug, got %v", info["problemUrl"])
	}
}

// stubExecer implements usage.Execer for tests.
type stubExecer struct {
	execFn func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *stubExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.execFn != nil {
		return s.execFn(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func TestPostgresReporter(t *testing.T) {
	var gotSQL []string
	var gotArgs []any
	db := &stubExecer{execFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		gotSQL = append(gotSQL, sql)
		gotArgs = args
		return pgconn.CommandTag{}, nil
	}}
	r := usage.NewPostgresReporter(db)
	if err := r.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	rec := usage.Record{RunID: "r1", Status: "Accepted", Language: "cpp", At: time.Now()}
	if err := r.Report(context.Background(), rec); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(gotSQL) != 2 || !strings.Contains(gotSQL[0], "CREATE TABLE") || !strings.Contains(gotSQL[1], "INSERT INTO usage_events") {
		t.Errorf("unexpected statements %v", gotSQL)
	}
	if len(gotArgs) != 7 || gotArgs[0] != "r1" || gotArgs[3] != "cpp" {
		t.Errorf("unexpected args %v", gotArgs)
	}
}

func TestPostgresReporter_Error(t *testing.T) {
	db := &stubExecer{execFn: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("connection refused")
	}}
	if err := usage.NewPostgresReporter(db).Report(context.Background(), usage.Record{}); err == nil {
		t.Fatal("expected error")
	}
}
