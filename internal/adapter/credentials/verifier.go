package credentials

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"boardserver/internal/domain"
)

// dummyHash absorbs a compare when the account does not exist, so lookup
// misses and password mismatches take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Verifier implements domain.CredentialVerifier with bcrypt hashes stored on
// the account row.
type Verifier struct {
	accounts domain.AccountRepository
}

// NewVerifier constructs a Verifier over the account repository.
func NewVerifier(accounts domain.AccountRepository) *Verifier {
	return &Verifier{accounts: accounts}
}

// Verify checks the login id / password pair and returns the account on
// success. Unknown accounts and wrong passwords are indistinguishable to the
// caller: both yield domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, loginID, password string) (*domain.Account, error) {
	account, err := v.accounts.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// HashPassword derives the stored hash for a new password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

var _ domain.CredentialVerifier = (*Verifier)(nil)
