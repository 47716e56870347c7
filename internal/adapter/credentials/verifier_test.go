package credentials

import (
	"context"
	"errors"
	"testing"

	"boardserver/internal/domain"
)

type stubAccounts struct {
	domain.AccountRepository
	account *domain.Account
}

func (s *stubAccounts) GetByLoginID(_ context.Context, loginID string) (*domain.Account, error) {
	if s.account != nil && s.account.LoginID == loginID {
		return s.account, nil
	}
	return nil, domain.ErrNotFound
}

func TestVerifyAcceptsCorrectPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword(): %v", err)
	}
	verifier := NewVerifier(&stubAccounts{account: &domain.Account{LoginID: "alice", PasswordHash: hash}})

	account, err := verifier.Verify(context.Background(), "alice", "hunter2!")
	if err != nil {
		t.Fatalf("Verify(): %v", err)
	}
	if account.LoginID != "alice" {
		t.Fatalf("Verify() account = %q, want alice", account.LoginID)
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword(): %v", err)
	}
	verifier := NewVerifier(&stubAccounts{account: &domain.Account{LoginID: "alice", PasswordHash: hash}})

	if _, err := verifier.Verify(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify() wrong password = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsUnknownAccount(t *testing.T) {
	verifier := NewVerifier(&stubAccounts{})

	if _, err := verifier.Verify(context.Background(), "nobody", "whatever"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify() unknown account = %v, want ErrUnauthorized", err)
	}
}
