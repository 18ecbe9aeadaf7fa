package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/proxy"
	"github.com/shaiso/Autofarm/internal/telemetry"
	"github.com/shaiso/Autofarm/internal/worker"
	"golang.org/x/sync/errgroup"
)

// Runner — запущенный автомат аккаунта. Реализуется *worker.Worker.
type Runner interface {
	Session() string
	Run(ctx context.Context) error
	Status() worker.Status
}

// Factory создаёт Runner для аккаунта.
type Factory func(account domain.Account) (Runner, error)

// Orchestrator запускает по одному воркеру на аккаунт и ждёт их завершения.
//
// Оркестратор ничего не перезапускает и не повторяет: вся устойчивость
// живёт внутри воркера. Завершение одного воркера (в том числе TERMINATED)
// только логируется и не влияет на остальных.
type Orchestrator struct {
	accounts []domain.Account
	factory  Factory
	logger   *slog.Logger

	workers *workerSet

	mu      sync.Mutex
	running bool
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Accounts — аккаунты с уже назначенными прокси (см. Plan).
	Accounts []domain.Account

	// NewWorker — фабрика воркеров.
	NewWorker Factory

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		accounts: cfg.Accounts,
		factory:  cfg.NewWorker,
		logger:   logger,
		workers:  newWorkerSet(),
	}
}

// Plan строит список аккаунтов и назначает прокси по кругу.
// Порядок аккаунтов сохраняется; повтор сессии — ErrDuplicateAccount.
func Plan(sessions, proxies []string) ([]domain.Account, error) {
	if len(sessions) == 0 {
		return nil, ErrNoAccounts
	}
	if err := checkUnique(sessions); err != nil {
		return nil, err
	}

	assigned := proxy.Assign(sessions, proxies)

	accounts := make([]domain.Account, 0, len(sessions))
	for _, s := range sessions {
		accounts = append(accounts, domain.NewAccount(s, assigned[s]))
	}
	return accounts, nil
}

func checkUnique(sessions []string) error {
	seen := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Run создаёт воркеры и блокируется, пока все они не завершатся.
//
// Возвращает ctx.Err() после отмены и nil, если все воркеры завершились сами
// (все сессии отозваны).
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	if len(o.accounts) == 0 {
		return ErrNoAccounts
	}

	sessions := make([]string, 0, len(o.accounts))
	for _, a := range o.accounts {
		sessions = append(sessions, a.Session)
	}
	if err := checkUnique(sessions); err != nil {
		return err
	}

	runners := make([]Runner, 0, len(o.accounts))
	for _, account := range o.accounts {
		r, err := o.factory(account)
		if err != nil {
			return fmt.Errorf("create worker %s: %w", account.Session, err)
		}
		o.workers.add(r)
		runners = append(runners, r)
	}

	o.logger.Info("starting workers", "count", len(runners))

	// Без WithContext: ошибка одного воркера не отменяет остальных.
	var g errgroup.Group
	for _, r := range runners {
		g.Go(func() error {
			telemetry.WorkersActive.Inc()
			defer telemetry.WorkersActive.Dec()

			o.supervise(ctx, r)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		o.logger.Info("all workers stopped")
		return err
	}

	o.logger.Warn("all workers finished")
	return nil
}

// supervise запускает воркер и логирует причину его завершения.
func (o *Orchestrator) supervise(ctx context.Context, r Runner) {
	logger := telemetry.WithAccount(o.logger, r.Session())

	defer func() {
		reason := ""
		if p := recover(); p != nil {
			logger.Error("worker panicked", "panic", p)
			reason = fmt.Sprintf("panic: %v", p)
		}
		o.workers.markExited(r.Session(), reason)
	}()

	err := r.Run(ctx)
	switch {
	case err == nil:
		logger.Info("worker finished")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("worker stopped")
	case auth.IsFatal(err):
		logger.Error("worker terminated", "error", err)
	default:
		logger.Error("worker exited", "error", err)
	}
}

// Snapshot возвращает статусы всех воркеров в порядке аккаунтов.
func (o *Orchestrator) Snapshot() []worker.Status {
	return o.workers.snapshot()
}

// Summary возвращает агрегированное состояние фермы.
func (o *Orchestrator) Summary() Summary {
	return Summarize(o.Snapshot())
}

// Report пишет сводку в лог. Вызывается планировщиком по REPORT_CRON.
func (o *Orchestrator) Report(_ context.Context) error {
	s := o.Summary()
	o.logger.Info("status report",
		"workers", s.Workers,
		"active", s.Active,
		"terminated", s.Terminated,
		"stopped", s.Stopped,
		"cycles", s.Cycles,
		"tasks_verified", s.TasksVerified,
		"rewards_claimed", s.RewardsClaimed,
		"total_balance", s.TotalBalance,
	)
	return nil
}
