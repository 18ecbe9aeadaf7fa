package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Autofarm/internal/useragent"
)

// UserAgentRepo — хранилище User-Agent в таблице user_agents.
// Реализует useragent.Store.
type UserAgentRepo struct {
	pool *pgxpool.Pool
}

// NewUserAgentRepo создаёт новый UserAgentRepo.
func NewUserAgentRepo(pool *pgxpool.Pool) *UserAgentRepo {
	return &UserAgentRepo{pool: pool}
}

var _ useragent.Store = (*UserAgentRepo)(nil)

// Get возвращает User-Agent сессии или useragent.ErrNotFound.
func (r *UserAgentRepo) Get(ctx context.Context, session string) (string, error) {
	query := `SELECT user_agent FROM user_agents WHERE session_name = $1`

	var ua string
	err := r.pool.QueryRow(ctx, query, session).Scan(&ua)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", useragent.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user agent: %w", err)
	}
	return ua, nil
}

// Save сохраняет или заменяет User-Agent сессии.
func (r *UserAgentRepo) Save(ctx context.Context, session, userAgent string) error {
	query := `
		INSERT INTO user_agents (session_name, user_agent)
		VALUES ($1, $2)
		ON CONFLICT (session_name)
		DO UPDATE SET user_agent = EXCLUDED.user_agent, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, session, userAgent); err != nil {
		return fmt.Errorf("save user agent: %w", err)
	}
	return nil
}
