package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gsarma/judgerun/internal/code"
	"github.com/gsarma/judgerun/internal/execution"
	"github.com/gsarma/judgerun/internal/logger"
	"github.com/gsarma/judgerun/internal/usage"
)

const (
	defaultPort         = "8080"
	defaultSubmitURL    = "https://judge0-ce.p.sulu.sh"
	defaultFetchURL     = "https://ce.judge0.com"
	defaultSettingsPath = "judgerun.yaml"
	defaultDashboardURL = "https://codeforces-lite-dashboard.vercel.app"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port         string
	APIToken     string
	SettingsPath string
	SettingsKey  string
	Judge0       code.Judge0Config
	Execution    execution.Config
	UsageSink    string
	Dashboard    usage.DashboardConfig
	DatabaseURL  string
	Log          logger.Config
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:         getString("PORT", defaultPort),
		APIToken:     os.Getenv("API_TOKEN"),
		SettingsPath: getString("SETTINGS_PATH", defaultSettingsPath),
		SettingsKey:  os.Getenv("SETTINGS_KEY"),
		Judge0: code.Judge0Config{
			SubmitURL: getString("JUDGE0_SUBMIT_URL", defaultSubmitURL),
			FetchURL:  getString("JUDGE0_FETCH_URL", defaultFetchURL),
			AuthToken: os.Getenv("JUDGE0_AUTH_TOKEN"),
		},
		Execution:   execution.DefaultConfig(),
		UsageSink:   getString("USAGE_SINK", "dashboard"),
		Dashboard:   usage.DashboardConfig{URL: getString("USAGE_DASHBOARD_URL", defaultDashboardURL)},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Log: logger.Config{
			Level:  getString("LOG_LEVEL", "info"),
			Format: getString("LOG_FORMAT", "console"),
		},
	}

	var err error
	if cfg.Execution.PerTestTimeout, err = getMillis("PER_TEST_TIMEOUT_MS", cfg.Execution.PerTestTimeout); err != nil {
		return cfg, err
	}
	if cfg.Execution.SlowPerTestTimeout, err = getMillis("SLOW_TEST_TIMEOUT_MS", cfg.Execution.SlowPerTestTimeout); err != nil {
		return cfg, err
	}
	if cfg.Execution.Repoll.Delay, err = getMillis("REPOLL_DELAY_MS", cfg.Execution.Repoll.Delay); err != nil {
		return cfg, err
	}

	if cfg.SettingsKey == "" {
		return cfg, fmt.Errorf("SETTINGS_KEY is required")
	}
	switch cfg.UsageSink {
	case "dashboard", "none":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required when USAGE_SINK=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown USAGE_SINK %q", cfg.UsageSink)
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getMillis(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
