package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Autofarm/internal/domain"
)

// CycleRepo — журнал циклов в таблице cycles.
type CycleRepo struct {
	pool *pgxpool.Pool
}

// NewCycleRepo создаёт новый CycleRepo.
func NewCycleRepo(pool *pgxpool.Pool) *CycleRepo {
	return &CycleRepo{pool: pool}
}

// RecordCycle сохраняет закрытый цикл. Повторная запись того же ID обновляет строку.
func (r *CycleRepo) RecordCycle(ctx context.Context, c *domain.Cycle) error {
	query := `
		INSERT INTO cycles (id, session_name, number, status, reauthenticated, balance,
		                    tasks_verified, reward_claimed, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reauthenticated = EXCLUDED.reauthenticated,
			balance = EXCLUDED.balance,
			tasks_verified = EXCLUDED.tasks_verified,
			reward_claimed = EXCLUDED.reward_claimed,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Session,
		c.Number,
		string(c.Status),
		c.Reauthenticated,
		c.Balance,
		c.TasksVerified,
		c.RewardClaimed,
		nullString(c.Error),
		c.StartedAt,
		c.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// LatestPerSession возвращает последний цикл каждого аккаунта, по имени сессии.
func (r *CycleRepo) LatestPerSession(ctx context.Context) ([]domain.Cycle, error) {
	query := `
		SELECT DISTINCT ON (session_name)
		       id, session_name, number, status, reauthenticated, balance,
		       tasks_verified, reward_claimed, error, started_at, finished_at
		FROM cycles
		ORDER BY session_name, started_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []domain.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, rows.Err()
}

// --- Helpers ---

// scanCycle сканирует строку в Cycle.
func scanCycle(row pgx.Row) (*domain.Cycle, error) {
	var c domain.Cycle
	var status string
	var cycleError *string

	err := row.Scan(
		&c.ID,
		&c.Session,
		&c.Number,
		&status,
		&c.Reauthenticated,
		&c.Balance,
		&c.TasksVerified,
		&c.RewardClaimed,
		&cycleError,
		&c.StartedAt,
		&c.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan cycle: %w", err)
	}

	c.Status = domain.CycleStatus(status)
	if cycleError != nil {
		c.Error = *cycleError
	}
	return &c, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
