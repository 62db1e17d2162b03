package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/stats"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 500 * time.Millisecond
	// DefaultWriteTimeout bounds a whole asynchronous Record call, retries
	// included.
	DefaultWriteTimeout = time.Minute
)

type Config struct {
	// MaxRetries is the number of submissions following the first failed
	// one. Non positive values fall back to DefaultMaxRetries.
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// Recorder attests committed settlement outcomes on the external ledger.
// Every entry it is given has a pending write marker stored together with
// the outcome, which is replaced by a ledger record on success and marked as
// deferred once all retries are exhausted, so that no write is ever lost.
type Recorder struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger
	clock       clock.Clock
	cfg         Config

	wg sync.WaitGroup
}

func NewRecorder(
	repoManager ports.RepoManager, ledger ports.Ledger, clk clock.Clock,
	cfg Config,
) (*Recorder, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Recorder{
		repoManager: repoManager,
		ledger:      ledger,
		clock:       clk,
		cfg:         cfg.withDefaults(),
	}, nil
}

// Record submits the entry to the ledger and returns the handle of the
// ledger transaction. An entry already recorded is not submitted again.
// If the ledger cannot be reached after all retries, the pending write is
// marked as deferred and ErrLedgerWriteDeferred is returned.
func (r *Recorder) Record(
	ctx context.Context, entry domain.LedgerEntry,
) (string, error) {
	repo := r.repoManager.LedgerRepository()
	logger := log.WithFields(log.Fields{
		"subject": entry.SubjectId,
		"outcome": entry.Outcome,
	})

	record, err := repo.GetRecord(ctx, entry.SubjectId, entry.Outcome)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if record != nil {
		if err := repo.DeletePendingWrite(
			ctx, entry.SubjectId, entry.Outcome,
		); err != nil {
			logger.WithError(err).Warn("failed to delete pending ledger write")
		}
		stats.LedgerWritesTotal.WithLabelValues("duplicate").Inc()
		return record.TxHandle, nil
	}

	handle, attempts, err := r.submit(ctx, entry)
	if err != nil {
		logger.WithError(err).Warnf(
			"ledger write deferred after %d attempts", attempts,
		)
		if err := r.deferWrite(ctx, entry, attempts, err); err != nil {
			logger.WithError(err).Error("failed to defer pending ledger write")
		}
		stats.LedgerWritesTotal.WithLabelValues("deferred").Inc()
		return "", fmt.Errorf("%w: %s", domain.ErrLedgerWriteDeferred, err)
	}

	if _, err := r.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := r.repoManager.LedgerRepository()
			if _, err := repo.AddRecord(
				ctx, domain.NewLedgerRecord(entry, handle),
			); err != nil {
				return nil, err
			}
			return nil, repo.DeletePendingWrite(ctx, entry.SubjectId, entry.Outcome)
		},
	); err != nil {
		return "", err
	}

	stats.LedgerWritesTotal.WithLabelValues("recorded").Inc()
	logger.Debugf("outcome attested on ledger with tx %s", handle)
	return handle, nil
}

// RecordAsync records the given entries in background. Use Wait to block
// until all of them are done.
func (r *Recorder) RecordAsync(entries []domain.LedgerEntry) {
	for _, e := range entries {
		entry := e
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()

			ctx, cancel := context.WithTimeout(
				context.Background(), r.cfg.WriteTimeout,
			)
			defer cancel()

			//nolint
			r.Record(ctx, entry)
		}()
	}
}

// Wait blocks until all writes started with RecordAsync are done.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) submit(
	ctx context.Context, entry domain.LedgerEntry,
) (string, int, error) {
	var lastErr error
	backoff := r.cfg.RetryBackoff

	for attempt := 1; attempt <= r.cfg.MaxRetries+1; attempt++ {
		handle, err := r.ledger.Submit(ctx, entry)
		if err == nil {
			return handle, attempt, nil
		}
		lastErr = err

		if attempt > r.cfg.MaxRetries {
			return "", attempt, lastErr
		}
		select {
		case <-ctx.Done():
			return "", attempt, lastErr
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", r.cfg.MaxRetries + 1, lastErr
}

func (r *Recorder) deferWrite(
	ctx context.Context, entry domain.LedgerEntry, attempts int, cause error,
) error {
	// The caller's context may be the one that expired.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	_, err := r.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := r.repoManager.LedgerRepository()
			now := r.clock.Now()

			write, err := repo.GetPendingWrite(ctx, entry.SubjectId, entry.Outcome)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return nil, err
				}
				write = domain.NewPendingLedgerWrite(entry, now)
				if err := repo.AddPendingWrite(ctx, write); err != nil {
					return nil, err
				}
			}

			write.Defer(attempts, cause, now)
			return nil, repo.UpdatePendingWrite(ctx, write)
		},
	)
	return err
}
