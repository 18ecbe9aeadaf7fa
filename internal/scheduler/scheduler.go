package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job — периодическое действие.
type Job func(ctx context.Context) error

// Scheduler запускает Job по cron-выражению.
type Scheduler struct {
	name     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
	now      func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Name     string // имя для логов
	CronExpr string
	Job      Job
	Logger   *slog.Logger
	Now      func() time.Time // default: time.Now
}

// New создаёт новый Scheduler.
func New(cfg Config) (*Scheduler, error) {
	schedule, err := cronParser.Parse(cfg.CronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.CronExpr, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		name:     cfg.Name,
		schedule: schedule,
		job:      cfg.Job,
		logger:   logger.With("job", cfg.Name),
		now:      now,
	}, nil
}

// Run выполняет Job в каждый due-момент до отмены ctx.
//
// Ошибка Job логируется и не останавливает планировщик.
// Пропущенные моменты (Job работал дольше интервала) не догоняются.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.schedule.Next(s.now())
		s.logger.Debug("next run scheduled", "next_due_at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.Tick(ctx); err != nil {
			s.logger.Warn("job failed", "error", err)
		}
	}
}

// Tick выполняет Job один раз.
func (s *Scheduler) Tick(ctx context.Context) error {
	start := s.now()
	if err := s.job(ctx); err != nil {
		return err
	}
	s.logger.Debug("job completed", "duration_ms", s.now().Sub(start).Milliseconds())
	return nil
}
