package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/gameapi"
	"github.com/shaiso/Autofarm/internal/jitter"
	"github.com/shaiso/Autofarm/internal/telemetry"
)

// journalTimeout — таймаут записи цикла в журнал.
const journalTimeout = 10 * time.Second

// API — методы backend'а, которые использует воркер.
// Реализуется *gameapi.Client.
type API interface {
	SetInitData(initData string)
	UserInfo(ctx context.Context) (*gameapi.Profile, error)
	Register(ctx context.Context, inviterID int64) error
	Balance(ctx context.Context) (gameapi.Balance, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ClaimTask(ctx context.Context, taskID domain.TaskID) (bool, error)
	ClaimReward(ctx context.Context) error
}

// Journal получает каждый закрытый цикл.
// Реализуется repo.CycleRepo и mq.Publisher.
type Journal interface {
	RecordCycle(ctx context.Context, c *domain.Cycle) error
}

// Settings — флаги поведения цикла.
type Settings struct {
	// AutoTask — выполнять задания.
	AutoTask bool

	// ClaimReward — забирать награду по cooldown.
	ClaimReward bool

	// Tasks — фильтр заданий (отключённые типы, подписка на каналы).
	Tasks domain.TaskFilter
}

// Config — конфигурация Worker.
type Config struct {
	Account  domain.Account
	API      API
	Auth     auth.Provider
	Joiner   auth.ChannelJoiner // опционально; без него tg-задачи проверяются без подписки
	Settings Settings
	Policy   jitter.Policy
	Journals []Journal

	// IPCheck — проверка внешнего IP через прокси аккаунта (опционально).
	IPCheck func(ctx context.Context) (string, error)

	Now    func() time.Time // default: time.Now
	Logger *slog.Logger
}

// Status — снимок состояния воркера.
type Status struct {
	Session         string             `json:"session"`
	Proxy           string             `json:"proxy,omitempty"`
	State           domain.WorkerState `json:"state"`
	Cycles          int                `json:"cycles"`
	Authentications int                `json:"authentications"`
	Balance         *int64             `json:"balance,omitempty"`
	TasksVerified   int                `json:"tasks_verified"`
	RewardsClaimed  int                `json:"rewards_claimed"`
	LastError       string             `json:"last_error,omitempty"`
	TokenIssuedAt   *time.Time         `json:"token_issued_at,omitempty"`
	LastCycleAt     *time.Time         `json:"last_cycle_at,omitempty"`
	NextCycleAt     *time.Time         `json:"next_cycle_at,omitempty"`
}

// Worker — AccountWorker: конечный автомат одного аккаунта.
//
// Все операции внутри воркера строго последовательны. Account принадлежит
// только этому воркеру; снаружи доступен лишь Status().
type Worker struct {
	account  domain.Account
	api      API
	auth     auth.Provider
	joiner   auth.ChannelJoiner
	settings Settings
	policy   jitter.Policy
	journals []Journal
	ipCheck  func(ctx context.Context) (string, error)
	now      func() time.Time
	logger   *slog.Logger

	// lastClaim — локальное время последней успешной награды.
	lastClaim *time.Time

	mu     sync.RWMutex
	status Status
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		account:  cfg.Account,
		api:      cfg.API,
		auth:     cfg.Auth,
		joiner:   cfg.Joiner,
		settings: cfg.Settings,
		policy:   cfg.Policy,
		journals: cfg.Journals,
		ipCheck:  cfg.IPCheck,
		now:      now,
		logger:   telemetry.WithAccount(logger, cfg.Account.Session),
		status: Status{
			Session: cfg.Account.Session,
			Proxy:   redactURL(cfg.Account.Proxy),
			State:   domain.WorkerStateInit,
		},
	}
}

// Session возвращает идентификатор аккаунта.
func (w *Worker) Session() string {
	return w.account.Session
}

// Status возвращает снимок состояния. Безопасен для вызова из других горутин.
func (w *Worker) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// Run — главный цикл воркера.
//
// Возвращает ошибку с auth.ErrSessionRevoked при фатальной ошибке
// аутентификации (состояние TERMINATED) и ctx.Err() при отмене (STOPPED).
// Остальные ошибки не выходят за пределы цикла.
func (w *Worker) Run(ctx context.Context) error {
	if w.account.Proxy != "" && w.ipCheck != nil {
		w.checkProxy(ctx)
	}

	delay, err := jitter.SleepRange(ctx, w.policy.StartDelay)
	if err != nil {
		return w.stop(err)
	}
	w.logger.Info("start delay elapsed", "delay", delay)

	number := 1
	for {
		err := w.cycle(ctx, number)
		if !errors.Is(err, ErrAuthUnavailable) {
			number++
		}

		switch {
		case ctx.Err() != nil:
			return w.stop(ctx.Err())

		case auth.IsFatal(err):
			w.setState(domain.WorkerStateTerminated)
			w.logger.Error("session is no longer valid, worker terminated", "error", err)
			return err

		case errors.Is(err, ErrAuthUnavailable):
			w.logger.Warn("init data not received, retrying", "error", err)
			if _, err := jitter.SleepRange(ctx, w.policy.AuthRetry); err != nil {
				return w.stop(err)
			}
			continue

		case err != nil:
			backoff := w.policy.ErrorBackoff.Draw()
			w.logger.Error("cycle failed", "error", err, "backoff", backoff)
			if err := jitter.Sleep(ctx, backoff); err != nil {
				return w.stop(err)
			}
			continue
		}

		sleep := w.policy.CycleSleep.Draw()
		next := w.now().Add(sleep)
		w.update(func(s *Status) { s.NextCycleAt = &next })
		w.logger.Info("sleeping until next cycle", "minutes", roundMinutes(sleep))

		if err := jitter.Sleep(ctx, sleep); err != nil {
			return w.stop(err)
		}
	}
}

// cycle выполняет один проход: при необходимости аутентификация,
// затем баланс, задания и награда.
//
// Цикл без init data не закрывается: он не попадает в журналы и счётчики,
// а повторяется с тем же номером через AuthRetry.
func (w *Worker) cycle(ctx context.Context, number int) error {
	c := domain.NewCycle(w.account.Session, number, w.now())
	logger := telemetry.WithCycleID(w.logger, c.ID.String())
	ctx = telemetry.WithLogger(ctx, logger)

	err := w.runCycle(ctx, logger, c)

	if ctx.Err() != nil || errors.Is(err, ErrAuthUnavailable) {
		return err
	}

	switch {
	case auth.IsFatal(err):
		c.MarkTerminated(w.now(), err.Error())
	case err != nil:
		c.MarkFailed(w.now(), err.Error())
	default:
		c.MarkCompleted(w.now())
	}
	w.finishCycle(ctx, logger, c)

	return err
}

func (w *Worker) runCycle(ctx context.Context, logger *slog.Logger, c *domain.Cycle) error {
	if w.account.TokenExpired(w.now()) {
		if err := w.refreshSession(ctx, logger); err != nil {
			return err
		}
		c.Reauthenticated = true

		if _, err := jitter.SleepRange(ctx, w.policy.PostLogin); err != nil {
			return err
		}
	}

	if err := w.fetchBalance(ctx, logger, c); err != nil && w.contain(ctx, logger, "balance", err) != nil {
		return ctx.Err()
	}

	if w.settings.AutoTask {
		if _, err := jitter.SleepRange(ctx, w.policy.PreTasks); err != nil {
			return err
		}
		verified, err := w.processTasks(ctx, logger)
		c.TasksVerified = verified
		if auth.IsFatal(err) {
			return err
		}
		if err != nil && w.contain(ctx, logger, "tasks", err) != nil {
			return ctx.Err()
		}
	}

	if w.settings.ClaimReward {
		claimed, err := w.claimReward(ctx, logger)
		c.RewardClaimed = claimed
		if err != nil && w.contain(ctx, logger, "reward", err) != nil {
			return ctx.Err()
		}
	}

	return nil
}

// contain логирует ошибку отдельного действия; после сетевой ошибки
// ждёт короткий backoff. Возвращает ошибку только при отмене ctx.
func (w *Worker) contain(ctx context.Context, logger *slog.Logger, action string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.Warn("action failed", "action", action, "error", err)
	w.update(func(s *Status) { s.LastError = err.Error() })

	if errors.Is(err, gameapi.ErrUnauthorized) {
		w.account.DropToken()
		w.update(func(s *Status) { s.TokenIssuedAt = nil })
		logger.Warn("token rejected by backend, re-authenticating next cycle")
	}

	if errors.Is(err, gameapi.ErrTransport) {
		_, sleepErr := jitter.SleepRange(ctx, w.policy.RequestBackoff)
		return sleepErr
	}
	return nil
}

func (w *Worker) fetchBalance(ctx context.Context, logger *slog.Logger, c *domain.Cycle) error {
	balance, err := w.api.Balance(ctx)
	if err != nil {
		return err
	}

	total := balance.Total()
	c.SetBalance(total)
	w.update(func(s *Status) { s.Balance = &total })
	telemetry.AccountBalance.WithLabelValues(w.account.Session).Set(float64(total))

	logger.Info("balance", "total", total)
	if logger.Enabled(ctx, slog.LevelDebug) {
		for _, f := range balance.Fields() {
			logger.Debug("balance field", "name", f.Name, "value", f.Value)
		}
	}
	return nil
}

// finishCycle обновляет статус, метрики и журналы по закрытому циклу.
func (w *Worker) finishCycle(ctx context.Context, logger *slog.Logger, c *domain.Cycle) {
	w.update(func(s *Status) {
		s.Cycles++
		s.TasksVerified += c.TasksVerified
		if c.RewardClaimed {
			s.RewardsClaimed++
		}
		if c.Error != "" {
			s.LastError = c.Error
		}
		s.LastCycleAt = c.FinishedAt
		s.NextCycleAt = nil
	})
	telemetry.CyclesTotal.WithLabelValues(strings.ToLower(string(c.Status))).Inc()

	logger.Info("cycle finished",
		"status", c.Status,
		"tasks_verified", c.TasksVerified,
		"reward_claimed", c.RewardClaimed,
		"duration", c.Duration(),
	)

	if len(w.journals) == 0 {
		return
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	for _, j := range w.journals {
		if err := j.RecordCycle(jctx, c); err != nil {
			logger.Warn("failed to record cycle", "error", err)
		}
	}
}

func (w *Worker) checkProxy(ctx context.Context) {
	ip, err := w.ipCheck(ctx)
	if err != nil {
		w.logger.Warn("proxy check failed", "proxy", redactURL(w.account.Proxy), "error", err)
		return
	}
	w.logger.Info("proxy ip", "ip", ip)
}

// stop переводит воркер в STOPPED.
func (w *Worker) stop(err error) error {
	w.setState(domain.WorkerStateStopped)
	w.logger.Info("worker stopped")
	return err
}

func (w *Worker) setState(state domain.WorkerState) {
	w.update(func(s *Status) { s.State = state })
}

func (w *Worker) update(fn func(s *Status)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.status)
}

// redactURL скрывает пароль в адресе прокси для логов и статуса.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// roundMinutes округляет длительность до десятых минуты для логов.
func roundMinutes(d time.Duration) float64 {
	return float64(d.Round(6*time.Second)) / float64(time.Minute)
}
