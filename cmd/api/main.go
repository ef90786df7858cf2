package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-leave-engine/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	attendanceService "github.com/cmlabs-hris/hris-leave-engine/internal/service/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/service/leave"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer repos.close()

	clk := clock.New()

	if cfg.App.SeedDemoDirectory {
		n, err := fixtures.SeedDemoDirectory(ctx, repos.directory, clk.Now())
		if err != nil {
			return err
		}
		logger.Info("seeded demo directory", slog.Int("users", n))
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	requestService := leave.NewRequestService(repos.tx, repos.leave, repos.directory, leave.NewAllocator(cfg.Policy), clk)
	reporter := leave.NewReporter(repos.leave)
	leaveService := leave.NewLeaveService(repos.leave, repos.directory, requestService, reporter, clk)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, cfg.Policy, clk)

	leaveHandler := appHTTP.NewLeaveHandler(leaveService)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(logger, cfg.App, JWTService, leaveHandler, attendanceHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running",
			slog.String("addr", server.Addr),
			slog.String("storage", cfg.Storage.Driver),
			slog.Int("yearly_paid_leave_limit", cfg.Policy.YearlyPaidLeaveLimit),
			slog.Int("min_daily_work_minutes", cfg.Policy.MinDailyWorkMinutes),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-leave-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}
