package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"boardserver/internal/domain"
)

const defaultHistoryLimit = 200

// HistoryRepositoryPG implements domain.HistoryRepository on a PostgreSQL
// JSONB table. The audit store is a collaborator behind the repository
// interface; nothing outside this package depends on how entries are laid
// out.
type HistoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{pool: pool}
}

// Insert appends one audit entry.
func (r *HistoryRepositoryPG) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO history_log (id, account_id, ip, country, api, method, status, input, output, time)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9);
`,
		entry.AccountID,
		entry.IP,
		entry.Country,
		entry.API,
		entry.Method,
		entry.Status,
		entry.Input,
		entry.Output,
		entry.Time,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Query returns audit entries matching the filter.
func (r *HistoryRepositoryPG) Query(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	var (
		conds []string
		args  []any
	)
	addCond := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AccountID != "" {
		addCond("account_id = $%d", filter.AccountID)
	}
	if filter.API != "" {
		addCond("api = $%d", filter.API)
	}
	if !filter.From.IsZero() {
		addCond("time >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		addCond("time <= $%d", filter.To)
	}

	query := `SELECT id, account_id, ip, country, api, method, status, input, output, time FROM history_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if filter.Ascending {
		query += " ORDER BY time ASC"
	} else {
		query += " ORDER BY time DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.IP, &e.Country, &e.API, &e.Method, &e.Status, &e.Input, &e.Output, &e.Time); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ domain.HistoryRepository = (*HistoryRepositoryPG)(nil)
