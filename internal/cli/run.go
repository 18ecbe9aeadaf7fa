package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Autofarm/internal/config"
	"github.com/shaiso/Autofarm/internal/scheduler"
	"github.com/shaiso/Autofarm/internal/telemetry"
)

// ConfigFunc лениво загружает конфигурацию после парсинга флагов.
type ConfigFunc func() (*config.Config, error)

// shutdownTimeout — время на остановку HTTP-сервера.
const shutdownTimeout = 5 * time.Second

// NewRunCmd создаёт команду запуска фермы.
func NewRunCmd(configFn ConfigFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run all accounts until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFarm(cmd.Context(), configFn)
		},
	}
}

// runFarm запускает ферму и блокируется до SIGINT/SIGTERM или до
// завершения всех воркеров.
func runFarm(parent context.Context, configFn ConfigFunc) error {
	cfg, err := configFn()
	if err != nil {
		return err
	}

	logger := telemetry.SetupLogger()
	logger.Info("starting autofarm")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	farm, err := NewFarm(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer farm.Close()

	if cfg.ReportCron != "" {
		reporter, err := scheduler.New(scheduler.Config{
			Name:     "status-report",
			CronExpr: cfg.ReportCron,
			Job:      farm.Orchestrator.Report,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("status report: %w", err)
		}
		go reporter.Run(ctx)
	}

	// HTTP: /healthz + /metrics + /status
	var server *http.Server
	if cfg.MetricsPort != 0 {
		server = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           NewMux(farm.Orchestrator),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				cancel()
			}
		}()
	}

	err = farm.Orchestrator.Run(ctx)

	if server != nil {
		shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer stop()
		server.Shutdown(shutdownCtx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("autofarm stopped")
	return nil
}
