package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the registry table if it does not exist. The primary
// key doubles as the lookup index for every per-chat query.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS member_zones (
  chat_id     BIGINT NOT NULL,
  user_id     BIGINT NOT NULL,
  zone        TEXT NOT NULL,
  last_active TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (chat_id, user_id)
);`
	_, err := pool.Exec(ctx, ddl)
	return err
}
