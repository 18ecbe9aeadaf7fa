package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/config"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/gameapi"
	"github.com/shaiso/Autofarm/internal/mq"
	"github.com/shaiso/Autofarm/internal/orchestrator"
	"github.com/shaiso/Autofarm/internal/proxy"
	"github.com/shaiso/Autofarm/internal/repo"
	"github.com/shaiso/Autofarm/internal/useragent"
	"github.com/shaiso/Autofarm/internal/worker"
)

// Farm — собранная ферма: аккаунты, хранилища, журналы и оркестратор.
type Farm struct {
	Config       *config.Config
	Accounts     []domain.Account
	Orchestrator *orchestrator.Orchestrator

	userAgents useragent.Store
	journals   []worker.Journal
	gateway    *auth.Gateway
	logger     *slog.Logger

	closers []func()
}

// NewFarm находит сессии, назначает прокси, подключает необязательную
// инфраструктуру (Postgres, RabbitMQ) и создаёт оркестратор.
//
// Недоступный Postgres при заданном DB_URL — ошибка. Недоступный RabbitMQ
// только логируется: ферма работает без журнала событий.
func NewFarm(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Farm, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := &Farm{Config: cfg, logger: logger}

	accounts, err := planAccounts(cfg, logger)
	if err != nil {
		return nil, err
	}
	f.Accounts = accounts

	if err := f.openStorage(ctx); err != nil {
		f.Close()
		return nil, err
	}
	f.openEvents(ctx)

	f.gateway = auth.NewGateway(auth.GatewayConfig{
		BaseURL:  cfg.AuthGatewayURL,
		APIID:    cfg.APIID,
		APIHash:  cfg.APIHash,
		Bot:      cfg.BotPeer,
		Referral: cfg.Referral(),
		Timeout:  cfg.RequestTimeout,
	})

	f.Orchestrator = orchestrator.New(orchestrator.Config{
		Accounts:  accounts,
		NewWorker: f.workerFactory(ctx),
		Logger:    logger,
	})

	return f, nil
}

// planAccounts находит сессии и назначает им прокси из файла.
func planAccounts(cfg *config.Config, logger *slog.Logger) ([]domain.Account, error) {
	sessions, err := config.DiscoverSessions(cfg.SessionsDir)
	if err != nil {
		return nil, err
	}

	var proxies []string
	if cfg.UseProxyFromFile {
		proxies, err = proxy.LoadFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("detected accounts", "sessions", len(sessions), "proxies", len(proxies))

	return orchestrator.Plan(sessions, proxies)
}

// openStorage выбирает хранилище User-Agent и журнал циклов.
// С DB_URL оба живут в Postgres, без него UA хранятся в JSON-файле.
func (f *Farm) openStorage(ctx context.Context) error {
	if f.Config.DBURL == "" {
		f.userAgents = useragent.NewFileStore(f.Config.UserAgentsFile, f.logger)
		return nil
	}

	pool, err := openPool(ctx, f.Config.DBURL)
	if err != nil {
		return err
	}
	f.closers = append(f.closers, pool.Close)
	f.logger.Info("database connected")

	f.userAgents = repo.NewUserAgentRepo(pool)
	f.journals = append(f.journals, repo.NewCycleRepo(pool))
	return nil
}

// openPool подключается к Postgres и создаёт схему.
func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := repo.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// openEvents подключает RabbitMQ-журнал, если задан RABBITMQ_URL.
func (f *Farm) openEvents(ctx context.Context) {
	if f.Config.RabbitMQURL == "" {
		return
	}

	conn, err := mq.Dial(f.Config.RabbitMQURL, f.logger)
	if err != nil {
		f.logger.Warn("RabbitMQ not available, running without event journal", "error", err)
		return
	}
	f.closers = append(f.closers, func() { conn.Close() })
	f.logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, conn); err != nil {
		f.logger.Warn("failed to setup topology", "error", err)
	}

	f.journals = append(f.journals, mq.NewPublisher(conn, f.logger))
}

// workerFactory создаёт AccountWorker для аккаунта: закреплённый UA,
// HTTP-клиент через прокси аккаунта и клиент backend'а поверх него.
func (f *Farm) workerFactory(ctx context.Context) orchestrator.Factory {
	cfg := f.Config

	return func(account domain.Account) (orchestrator.Runner, error) {
		ua, err := useragent.Resolve(ctx, f.userAgents, account.Session, f.logger)
		if err != nil {
			return nil, fmt.Errorf("user agent for %s: %w", account.Session, err)
		}
		account.UserAgent = ua

		httpClient, err := proxy.NewHTTPClient(account.Proxy)
		if err != nil {
			return nil, fmt.Errorf("proxy for %s: %w", account.Session, err)
		}

		api := gameapi.New(gameapi.Config{
			BaseURL:    cfg.APIBaseURL,
			HTTPClient: httpClient,
			UserAgent:  ua,
			Timeout:    cfg.RequestTimeout,
		})

		var ipCheck func(ctx context.Context) (string, error)
		if account.Proxy != "" {
			ipCheck = func(ctx context.Context) (string, error) {
				return proxy.CheckIP(ctx, httpClient, cfg.IPCheckURL)
			}
		}

		var joiner auth.ChannelJoiner
		if cfg.JoinChannels {
			joiner = f.gateway
		}

		return worker.New(worker.Config{
			Account: account,
			API:     api,
			Auth:    f.gateway,
			Joiner:  joiner,
			Settings: worker.Settings{
				AutoTask:    cfg.AutoTask,
				ClaimReward: cfg.ClaimReward,
				Tasks:       cfg.TaskFilter(),
			},
			Policy:   cfg.JitterPolicy(),
			Journals: f.journals,
			IPCheck:  ipCheck,
			Logger:   f.logger,
		}), nil
	}
}

// Close освобождает подключения в обратном порядке.
func (f *Farm) Close() {
	for i := len(f.closers) - 1; i >= 0; i-- {
		f.closers[i]()
	}
	f.closers = nil
}
