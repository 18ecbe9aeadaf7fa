package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema — таблицы фермы. Создаются идемпотентно при старте.
const schema = `
CREATE TABLE IF NOT EXISTS user_agents (
	session_name TEXT PRIMARY KEY,
	user_agent   TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cycles (
	id               UUID PRIMARY KEY,
	session_name     TEXT NOT NULL,
	number           INT NOT NULL,
	status           TEXT NOT NULL,
	reauthenticated  BOOLEAN NOT NULL DEFAULT false,
	balance          BIGINT,
	tasks_verified   INT NOT NULL DEFAULT 0,
	reward_claimed   BOOLEAN NOT NULL DEFAULT false,
	error            TEXT,
	started_at       TIMESTAMPTZ NOT NULL,
	finished_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS cycles_session_started_idx
	ON cycles (session_name, started_at DESC);
`

// EnsureSchema создаёт таблицы, если их ещё нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
