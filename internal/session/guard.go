package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"boardserver/internal/domain"
)

const markerKeyPrefix = "session:"

// Guard owns the session-marker lifecycle. A login attempt is accepted only
// when no marker younger than the freshness window exists for the account;
// the marker TTL equals the window, so expiry is what frees the key and the
// single SET-NX call is the whole check-then-set.
type Guard struct {
	store  KeyStore
	clock  quartz.Clock
	window time.Duration
	logger zerolog.Logger
}

// NewGuard constructs a Guard. window is the duplicate-login freshness
// window W.
func NewGuard(store KeyStore, clock quartz.Clock, window time.Duration, logger zerolog.Logger) *Guard {
	return &Guard{store: store, clock: clock, window: window, logger: logger}
}

// AttemptLogin writes a fresh session marker for accountID. It returns
// domain.ErrDuplicateSession when a live marker already exists and
// domain.ErrStoreUnavailable when the store cannot be reached; login fails
// closed in both cases.
func (g *Guard) AttemptLogin(ctx context.Context, accountID string) (*domain.SessionMarker, error) {
	marker := domain.SessionMarker{
		SessionID: uuid.NewString(),
		AccountID: accountID,
		CreatedAt: g.clock.Now().UTC(),
	}
	payload, err := json.Marshal(marker)
	if err != nil {
		return nil, fmt.Errorf("encode session marker: %w", err)
	}

	ok, err := g.store.SetMarkerNX(ctx, markerKey(accountID), string(payload), g.window)
	if err != nil {
		return nil, fmt.Errorf("session guard: %w", err)
	}
	if !ok {
		g.logger.Debug().Str("account_id", accountID).Msg("duplicate login rejected")
		return nil, domain.ErrDuplicateSession
	}
	return &marker, nil
}

// EndSession deletes the account's marker. It is idempotent; ending an
// absent session is not an error.
func (g *Guard) EndSession(ctx context.Context, accountID string) error {
	if err := g.store.DeleteMarker(ctx, markerKey(accountID)); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// ActiveMarker returns the current marker for accountID, or
// domain.ErrNotFound when the account has no live session.
func (g *Guard) ActiveMarker(ctx context.Context, accountID string) (*domain.SessionMarker, error) {
	payload, err := g.store.GetMarker(ctx, markerKey(accountID))
	if err != nil {
		return nil, err
	}
	var marker domain.SessionMarker
	if err := json.Unmarshal([]byte(payload), &marker); err != nil {
		return nil, fmt.Errorf("decode session marker: %w", err)
	}
	return &marker, nil
}

func markerKey(accountID string) string {
	return markerKeyPrefix + accountID
}
