package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"boardserver/internal/domain"
)

const accountColumns = `id, login_id, password_hash, email, name, tel, birth, address, gender, is_admin, created_at, updated_at`

// AccountRepositoryPG implements domain.AccountRepository backed by PostgreSQL.
type AccountRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepositoryPG.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepositoryPG {
	return &AccountRepositoryPG{pool: pool}
}

// Create inserts a new account. Login id and email collisions surface as
// domain.ErrConflict.
func (r *AccountRepositoryPG) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
INSERT INTO accounts (id, login_id, password_hash, email, name, tel, birth, address, gender)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + accountColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		account.LoginID,
		account.PasswordHash,
		account.Email,
		account.Name,
		account.Tel,
		account.Birth,
		account.Address,
		account.Gender,
	)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

// GetByID fetches an account by UUID.
func (r *AccountRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByLoginID fetches an account by its human-chosen login id.
func (r *AccountRepositoryPG) GetByLoginID(ctx context.Context, loginID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE login_id = $1`, loginID)
	return scanAccount(row)
}

// FindLoginID recovers a login id from the registered name and email.
func (r *AccountRepositoryPG) FindLoginID(ctx context.Context, name, email string) (string, error) {
	row := r.pool.QueryRow(ctx, `SELECT login_id FROM accounts WHERE name = $1 AND email = $2`, name, email)
	var loginID string
	if err := row.Scan(&loginID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return loginID, nil
}

// Update applies the non-nil fields of update to the account.
func (r *AccountRepositoryPG) Update(ctx context.Context, id string, update domain.AccountUpdate) error {
	query := `
UPDATE accounts
SET password_hash = COALESCE($2, password_hash),
    tel = COALESCE($3, tel),
    birth = COALESCE($4, birth),
    address = COALESCE($5, address),
    gender = COALESCE($6, gender),
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		id,
		update.PasswordHash,
		update.Tel,
		update.Birth,
		update.Address,
		update.Gender,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the account and, via cascades, its posts and comments.
func (r *AccountRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.LoginID, &a.PasswordHash, &a.Email, &a.Name, &a.Tel, &a.Birth, &a.Address, &a.Gender, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
