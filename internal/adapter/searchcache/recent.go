package searchcache

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"

	"boardserver/internal/domain"
)

const (
	keyPrefix = "recent-search:"

	// searchTTL mirrors the visitor-set lifetime: a day of inactivity clears
	// the list on its own.
	searchTTL = 24 * time.Hour

	// keepEntries bounds the sorted set; older terms are trimmed on add.
	keepEntries = 20
)

// RecentSearches keeps a per-account list of search terms in a Redis sorted
// set scored by recency. Re-searching a term moves it to the front instead of
// duplicating it.
type RecentSearches struct {
	client  *redis.Client
	clock   quartz.Clock
	timeout time.Duration
}

// New constructs a RecentSearches over the shared Redis client.
func New(client *redis.Client, clock quartz.Clock, timeout time.Duration) *RecentSearches {
	return &RecentSearches{client: client, clock: clock, timeout: timeout}
}

// Add records term for the account and refreshes the list TTL.
func (s *RecentSearches) Add(ctx context.Context, accountID, term string) error {
	if accountID == "" || term == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := searchKey(accountID)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(s.clock.Now().UnixMilli()), Member: term})
	pipe.ZRemRangeByRank(ctx, key, 0, -(keepEntries + 1))
	pipe.Expire(ctx, key, searchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record search: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return nil
}

// List returns the account's most recent terms, newest first.
func (s *RecentSearches) List(ctx context.Context, accountID string, limit int64) ([]string, error) {
	if limit < 1 {
		limit = 1
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	terms, err := s.client.ZRevRange(ctx, searchKey(accountID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list searches: %v: %w", err, domain.ErrStoreUnavailable)
	}
	return terms, nil
}

func searchKey(accountID string) string {
	return keyPrefix + accountID
}
