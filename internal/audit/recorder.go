package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"boardserver/internal/domain"
	"boardserver/internal/infra/geoip"
)

const (
	bufferSize   = 256
	writeTimeout = 5 * time.Second
)

// Recorder is the narrow surface handlers use to emit audit entries. The
// backing document store stays behind domain.HistoryRepository.
type Recorder interface {
	Record(entry *domain.HistoryEntry)
}

// AsyncRecorder writes audit entries off the request path through a bounded
// buffer. When the buffer is full the entry is dropped with a warning;
// auditing never blocks or fails a request.
type AsyncRecorder struct {
	repo   domain.HistoryRepository
	geo    geoip.CountryResolver
	logger zerolog.Logger

	entries chan *domain.HistoryEntry
	done    chan struct{}
}

// NewAsyncRecorder starts the background writer. geo may be nil; entries are
// then stored without a country code.
func NewAsyncRecorder(repo domain.HistoryRepository, geo geoip.CountryResolver, logger zerolog.Logger) *AsyncRecorder {
	r := &AsyncRecorder{
		repo:    repo,
		geo:     geo,
		logger:  logger,
		entries: make(chan *domain.HistoryEntry, bufferSize),
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record enqueues one entry.
func (r *AsyncRecorder) Record(entry *domain.HistoryEntry) {
	if entry == nil {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	select {
	case r.entries <- entry:
	default:
		r.logger.Warn().Str("api", entry.API).Msg("audit buffer full; entry dropped")
	}
}

// Close drains outstanding entries and stops the writer.
func (r *AsyncRecorder) Close() {
	close(r.entries)
	<-r.done
}

func (r *AsyncRecorder) loop() {
	defer close(r.done)
	for entry := range r.entries {
		if r.geo != nil && entry.Country == "" && entry.IP != "" {
			if country, err := r.geo.CountryCode(entry.IP); err == nil {
				entry.Country = country
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.repo.Insert(ctx, entry); err != nil {
			r.logger.Error().Err(err).Str("api", entry.API).Msg("audit write failed")
		}
		cancel()
	}
}

var _ Recorder = (*AsyncRecorder)(nil)
