package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gsarma/judgerun/internal/api"
	"github.com/gsarma/judgerun/internal/code"
	"github.com/gsarma/judgerun/internal/crypto"
	"github.com/gsarma/judgerun/internal/execution"
	"github.com/gsarma/judgerun/internal/logger"
	"github.com/gsarma/judgerun/internal/settings"
	"github.com/gsarma/judgerun/internal/testcase"
	"github.com/gsarma/judgerun/internal/usage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sealer, err := crypto.NewSealer(cfg.SettingsKey)
	if err != nil {
		logger.L().Fatal("failed to initialize sealer", zap.Error(err))
	}
	st, err := settings.Open(cfg.SettingsPath, sealer)
	if err != nil {
		logger.L().Fatal("failed to load settings", zap.Error(err))
	}

	reporter, closeReporter := usageReporter(ctx, cfg)
	defer closeReporter()
	dispatcher := usage.NewDispatcher(reporter, 0)

	orch := execution.New(code.NewJudge0Gateway(cfg.Judge0), dispatcher, cfg.Execution)
	h := api.NewHandler(orch, execution.NewSession(), testcase.NewStore(), st)

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	api.RegisterRoutes(router, h, cfg.APIToken)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("usage_sink", cfg.UsageSink))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("shutdown", zap.Error(err))
	}
	dispatcher.Wait()
}

// usageReporter picks the sink runs are reported to. The returned func
// releases whatever the sink holds open.
func usageReporter(ctx context.Context, cfg Config) (usage.Reporter, func()) {
	switch cfg.UsageSink {
	case "postgres":
		pool, rep, err := usage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.L().Fatal("failed to connect to database", zap.Error(err))
		}
		return rep, pool.Close
	case "dashboard":
		return usage.NewDashboardReporter(cfg.Dashboard), func() {}
	default:
		return nil, func() {}
	}
}
