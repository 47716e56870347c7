package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"boardserver/internal/adapter/credentials"
	"boardserver/internal/domain"
	"boardserver/internal/middleware"
)

type signupRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"pw"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Tel      string `json:"tel"`
	Birth    string `json:"birth"`
	Address  string `json:"address"`
	Gender   string `json:"gender"`
}

func (req *signupRequest) validate() error {
	if err := validateField("login_id", req.LoginID, loginIDPattern); err != nil {
		return err
	}
	if err := validateField("pw", req.Password, passwordPattern); err != nil {
		return err
	}
	if err := validateField("email", req.Email, emailPattern); err != nil {
		return err
	}
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := validateOptional("tel", req.Tel, telPattern); err != nil {
		return err
	}
	if err := validateOptional("birth", req.Birth, birthPattern); err != nil {
		return err
	}
	return validateOptional("gender", req.Gender, genderPattern)
}

type accountResponse struct {
	ID      string `json:"id"`
	LoginID string `json:"login_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Tel     string `json:"tel,omitempty"`
	Birth   string `json:"birth,omitempty"`
	Address string `json:"address,omitempty"`
	Gender  string `json:"gender,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:      a.ID,
		LoginID: a.LoginID,
		Email:   a.Email,
		Name:    a.Name,
		Tel:     a.Tel,
		Birth:   a.Birth,
		Address: a.Address,
		Gender:  a.Gender,
		IsAdmin: a.IsAdmin,
	}
}

// Signup registers a new account.
func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	created, err := a.Accounts.Create(r.Context(), &domain.Account{
		LoginID:      req.LoginID,
		PasswordHash: hash,
		Email:        req.Email,
		Name:         req.Name,
		Tel:          req.Tel,
		Birth:        req.Birth,
		Address:      req.Address,
		Gender:       req.Gender,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, created.ID, http.StatusCreated, map[string]string{"login_id": req.LoginID}, nil)
	a.json(w, http.StatusCreated, toAccountResponse(created))
}

// MyAccount returns the caller's profile.
func (a *App) MyAccount(w http.ResponseWriter, r *http.Request) {
	account, err := a.Accounts.GetByID(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toAccountResponse(account))
}

type updateAccountRequest struct {
	Password *string `json:"pw"`
	Tel      *string `json:"tel"`
	Birth    *string `json:"birth"`
	Address  *string `json:"address"`
	Gender   *string `json:"gender"`
}

// UpdateMyAccount patches the caller's mutable profile fields. Absent fields
// stay untouched.
func (a *App) UpdateMyAccount(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.UserIDFromContext(r.Context())

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	update := domain.AccountUpdate{
		Tel:     req.Tel,
		Birth:   req.Birth,
		Address: req.Address,
		Gender:  req.Gender,
	}
	if req.Password != nil {
		if err := validateField("pw", *req.Password, passwordPattern); err != nil {
			a.fail(w, r, err)
			return
		}
		hash, err := credentials.HashPassword(*req.Password)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		update.PasswordHash = &hash
	}
	if req.Tel != nil {
		if err := validateOptional("tel", *req.Tel, telPattern); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	if req.Birth != nil {
		if err := validateOptional("birth", *req.Birth, birthPattern); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	if req.Gender != nil {
		if err := validateOptional("gender", *req.Gender, genderPattern); err != nil {
			a.fail(w, r, err)
			return
		}
	}

	if err := a.Accounts.Update(r.Context(), accountID, update); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, accountID, http.StatusOK, nil, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "account updated"})
}

// DeleteMyAccount removes the caller's account and releases its session slot.
func (a *App) DeleteMyAccount(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.UserIDFromContext(r.Context())

	if err := a.Accounts.Delete(r.Context(), accountID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Guard.EndSession(r.Context(), accountID); err != nil {
		a.Logger.Warn().Err(err).Str("account_id", accountID).Msg("session release failed on delete")
	}
	a.auditEntry(r, accountID, http.StatusOK, nil, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

type findIDRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FindLoginID recovers a forgotten login id from name and email.
func (a *App) FindLoginID(w http.ResponseWriter, r *http.Request) {
	var req findIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name and email are required")
		return
	}
	loginID, err := a.Accounts.FindLoginID(r.Context(), req.Name, req.Email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"login_id": loginID})
}

type resetPasswordRequest struct {
	LoginID     string `json:"login_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	NewPassword string `json:"new_pw"`
}

// ResetPassword sets a new password after the caller proves knowledge of the
// account's registered name and email. Passwords are never sent back.
func (a *App) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.LoginID == "" || req.Name == "" || req.Email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "login_id, name and email are required")
		return
	}
	if err := validateField("new_pw", req.NewPassword, passwordPattern); err != nil {
		a.fail(w, r, err)
		return
	}

	account, err := a.Accounts.GetByLoginID(r.Context(), req.LoginID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if account.Name != req.Name || account.Email != req.Email {
		a.fail(w, r, domain.ErrNotFound)
		return
	}

	hash, err := credentials.HashPassword(req.NewPassword)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Accounts.Update(r.Context(), account.ID, domain.AccountUpdate{PasswordHash: &hash}); err != nil {
		a.fail(w, r, err)
		return
	}
	a.auditEntry(r, account.ID, http.StatusOK, map[string]string{"login_id": req.LoginID}, nil)
	a.json(w, http.StatusOK, map[string]string{"message": "password reset"})
}
