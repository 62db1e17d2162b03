package httpledger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/util"
	"go.uber.org/ratelimit"
)

const (
	DefaultRateLimit    = 50
	DefaultPollInterval = 500 * time.Millisecond

	statusConfirmed = "confirmed"
	statusFailed    = "failed"
)

var (
	// ErrEntryRejected is returned if the ledger refuses an entry.
	ErrEntryRejected = errors.New("ledger entry rejected")
	// ErrMissingAddr is returned if the ledger address is not set.
	ErrMissingAddr = errors.New("missing ledger address")
)

type Config struct {
	Addr string
	// RateLimit is the max number of submissions per second.
	RateLimit      int
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type entryRequest struct {
	IdempotencyKey string    `json:"idempotencyKey"`
	SubjectId      string    `json:"subjectId"`
	SubjectType    string    `json:"subjectType"`
	Outcome        string    `json:"outcome"`
	Participants   []string  `json:"participants"`
	Timestamp      time.Time `json:"timestamp"`
}

type entryReply struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ledger struct {
	client       *util.JSONClient
	limiter      ratelimit.Limiter
	pollInterval time.Duration
}

// NewLedger returns a client of a remote append-only ledger service.
// Submissions are throttled and go through a circuit breaker.
func NewLedger(cfg Config) (ports.Ledger, error) {
	if len(cfg.Addr) <= 0 {
		return nil, ErrMissingAddr
	}
	if _, err := url.Parse(cfg.Addr); err != nil {
		return nil, fmt.Errorf("invalid ledger address: %w", err)
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return &ledger{
		client:       util.NewJSONClient("ledger", cfg.Addr, cfg.RequestTimeout, nil),
		limiter:      ratelimit.New(cfg.RateLimit),
		pollInterval: cfg.PollInterval,
	}, nil
}

func (l *ledger) Submit(
	ctx context.Context, entry domain.LedgerEntry,
) (string, error) {
	l.limiter.Take()

	var reply entryReply
	if err := l.client.Post(ctx, "/v1/entries", entryRequest{
		IdempotencyKey: entry.IdempotencyKey(),
		SubjectId:      entry.SubjectId,
		SubjectType:    string(entry.SubjectType),
		Outcome:        entry.Outcome,
		Participants:   entry.Participants,
		Timestamp:      entry.Timestamp.UTC(),
	}, &reply); err != nil {
		return "", err
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		switch reply.Status {
		case statusConfirmed:
			return reply.Handle, nil
		case statusFailed:
			return "", fmt.Errorf("%w: %s", ErrEntryRejected, reply.Reason)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		handle := reply.Handle
		if err := l.client.Get(
			ctx, "/v1/entries/"+url.PathEscape(handle), &reply,
		); err != nil {
			return "", err
		}
	}
}

func (l *ledger) Close() error {
	return nil
}
