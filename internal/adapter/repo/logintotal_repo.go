package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boardserver/internal/domain"
)

// LoginTotalRepositoryPG implements domain.LoginTotalStore as an append-only
// ledger in PostgreSQL. One row per rolled-up day; the latest row carries the
// cumulative total, and the day column doubles as the "last rolled-up day"
// bookkeeping the rollup recovery logic depends on.
type LoginTotalRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewLoginTotalRepository constructs the repository.
func NewLoginTotalRepository(pool *pgxpool.Pool) *LoginTotalRepositoryPG {
	return &LoginTotalRepositoryPG{pool: pool}
}

// Current returns the cumulative login total and the last rolled-up day. An
// empty ledger yields (0, "").
func (r *LoginTotalRepositoryPG) Current(ctx context.Context) (int64, string, error) {
	row := r.pool.QueryRow(ctx, `
SELECT total, to_char(rollup_day, 'YYYY-MM-DD')
FROM login_rollups
ORDER BY rollup_day DESC
LIMIT 1;
`)
	var total int64
	var day string
	if err := row.Scan(&total, &day); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", fmt.Errorf("read login ledger: %w", err)
	}
	return total, day, nil
}

// Append records the rollup for day. The primary key on rollup_day makes the
// insert conditional: a day that was already rolled up reports
// inserted=false and leaves the ledger untouched. That single statement is
// the store-level exactly-once guard for the daily rollup.
func (r *LoginTotalRepositoryPG) Append(ctx context.Context, day string, total, visitors int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
INSERT INTO login_rollups (rollup_day, total, visitors)
VALUES ($1::date, $2, $3)
ON CONFLICT (rollup_day) DO NOTHING;
`, day, total, visitors)
	if err != nil {
		return false, fmt.Errorf("append login ledger: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ domain.LoginTotalStore = (*LoginTotalRepositoryPG)(nil)
