package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/proxy"
	"github.com/shaiso/Autofarm/internal/repo"
	"github.com/shaiso/Autofarm/internal/useragent"
)

// AccountRow — строка `autofarm accounts`.
type AccountRow struct {
	Session    string              `json:"session"`
	Proxy      string              `json:"proxy,omitempty"`
	UserAgent  string              `json:"user_agent,omitempty"`
	LastCycle  *domain.CycleStatus `json:"last_cycle,omitempty"`
	Balance    *int64              `json:"balance,omitempty"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

// NewAccountsCmd создаёт команду просмотра аккаунтов: сессии, назначенные
// прокси, закреплённые User-Agent и, при DB_URL, итог последнего цикла.
func NewAccountsCmd(configFn ConfigFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List sessions with assigned proxy and user agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()

			cfg, err := configFn()
			if err != nil {
				return err
			}

			// Служебные логи не должны смешиваться с таблицей.
			logger := slog.New(slog.DiscardHandler)
			accounts, err := planAccounts(cfg, logger)
			if err != nil {
				return err
			}

			var (
				store  useragent.Store = useragent.NewFileStore(cfg.UserAgentsFile, logger)
				cycles []domain.Cycle
			)
			if cfg.DBURL != "" {
				pool, err := openPool(ctx, cfg.DBURL)
				if err != nil {
					return err
				}
				defer pool.Close()

				store = repo.NewUserAgentRepo(pool)
				cycles, err = repo.NewCycleRepo(pool).LatestPerSession(ctx)
				if err != nil {
					return err
				}
			}

			rows, err := collectAccounts(ctx, accounts, store, cycles)
			if err != nil {
				return err
			}

			headers := []string{"SESSION", "PROXY", "USER_AGENT", "LAST_CYCLE", "BALANCE", "FINISHED"}
			table := make([][]string, len(rows))
			for i, r := range rows {
				status := "-"
				if r.LastCycle != nil {
					status = string(*r.LastCycle)
				}
				table[i] = []string{
					r.Session,
					dash(r.Proxy),
					dash(r.UserAgent),
					status,
					formatInt64(r.Balance),
					formatTime(r.FinishedAt),
				}
			}

			out.Print(headers, table, rows)
			return nil
		},
	}
}

// collectAccounts собирает строки для аккаунтов. User-Agent только читается:
// отсутствующий не создаётся, это делает `autofarm run`.
func collectAccounts(ctx context.Context, accounts []domain.Account, store useragent.Store, cycles []domain.Cycle) ([]AccountRow, error) {
	latest := make(map[string]*domain.Cycle, len(cycles))
	for i := range cycles {
		latest[cycles[i].Session] = &cycles[i]
	}

	rows := make([]AccountRow, 0, len(accounts))
	for _, a := range accounts {
		row := AccountRow{Session: a.Session, Proxy: redactProxy(a.Proxy)}

		ua, err := store.Get(ctx, a.Session)
		switch {
		case err == nil:
			row.UserAgent = ua
		case errors.Is(err, useragent.ErrNotFound):
			// ещё не создан
		default:
			return nil, fmt.Errorf("user agent for %s: %w", a.Session, err)
		}

		if c, ok := latest[a.Session]; ok {
			status := c.Status
			row.LastCycle = &status
			row.Balance = c.Balance
			row.FinishedAt = c.FinishedAt
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// redactProxy скрывает пароль прокси в выводе.
func redactProxy(line string) string {
	if line == "" {
		return ""
	}
	u, err := proxy.Parse(line)
	if err != nil {
		return line
	}
	return u.Redacted()
}
