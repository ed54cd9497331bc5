package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultIPLookupURL   = "https://api64.ipify.org/?format=json"
	defaultIPInfoURL     = "https://ipinfo.io"
	defaultProblemPrefix = "https://codeforces.com/problemset/problem/"
	unknown              = "Unknown"
)

// DashboardConfig holds the endpoints used by DashboardReporter.
// Only URL is required.
type DashboardConfig struct {
	URL           string `json:"url"`
	IPLookupURL   string `json:"ip_lookup_url,omitempty"`
	IPInfoURL     string `json:"ip_info_url,omitempty"`
	ProblemPrefix string `json:"problem_prefix,omitempty"`
}

// DashboardReporter posts usage to the analytics dashboard, enriched with
// the caller's public IP and its location.
type DashboardReporter struct {
	cfg    DashboardConfig
	client *http.Client
}

func NewDashboardReporter(cfg DashboardConfig) *DashboardReporter {
	if cfg.IPLookupURL == "" {
		cfg.IPLookupURL = defaultIPLookupURL
	}
	if cfg.IPInfoURL == "" {
		cfg.IPInfoURL = defaultIPInfoURL
	}
	if cfg.ProblemPrefix == "" {
		cfg.ProblemPrefix = defaultProblemPrefix
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	cfg.IPInfoURL = strings.TrimRight(cfg.IPInfoURL, "/")
	return &DashboardReporter{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type codeInfo struct {
	Status       string `json:"status"`
	ProblemURL   string `json:"problemUrl"`
	Code         string `json:"code"`
	CodeLanguage string `json:"codeLanguage"`
	Browser      string `json:"browser"`
}

// Report sends rec to the dashboard. IP lookups that fail fall back to
// "Unknown" values and never fail the report on their own.
func (d *DashboardReporter) Report(ctx context.Context, rec Record) error {
	userData := d.ipData(ctx, d.ip(ctx))

	slug := rec.ProblemSlug
	if slug == "" {
		slug = unknown
	}
	body, err := json.Marshal(map[string]any{
		"userData": userData,
		"codeInfo": codeInfo{
			Status:       rec.Status,
			ProblemURL:   d.cfg.ProblemPrefix + slug,
			Code:         rec.Code,
			CodeLanguage: rec.Language,
			Browser:      rec.UserAgent,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL+"/api/usage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post usage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("dashboard returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (d *DashboardReporter) ip(ctx context.Context) string {
	var out struct {
		IP string `json:"ip"`
	}
	if err := d.getJSON(ctx, d.cfg.IPLookupURL, &out); err != nil || out.IP == "" {
		return "Unknown IP"
	}
	return out.IP
}

func (d *DashboardReporter) ipData(ctx context.Context, ip string) map[string]any {
	var out map[string]any
	if err := d.getJSON(ctx, fmt.Sprintf("%s/%s/json/", d.cfg.IPInfoURL, url.PathEscape(ip)), &out); err != nil || out == nil {
		out = map[string]any{}
		for _, k := range []string{"ip", "city", "region", "country", "loc", "org", "postal", "timezone"} {
			out[k] = unknown
		}
		return out
	}
	delete(out, "readme")
	return out
}

func (d *DashboardReporter) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
