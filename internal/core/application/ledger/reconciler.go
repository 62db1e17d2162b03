package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultReconcileInterval = 10 * time.Minute
	// DefaultGracePeriod is how long a queued write is left to the recorder
	// before the reconciler takes it over.
	DefaultGracePeriod = 5 * time.Minute
	defaultBatchSize   = 100
)

type ReconcilerConfig struct {
	Interval    time.Duration
	GracePeriod time.Duration
	BatchSize   int

	// Ticker triggers the rounds of Start. Defaults to a ticker firing at
	// every Interval.
	Ticker ticker.Ticker
}

// ReconcileSummary reports what a reconciliation round did.
type ReconcileSummary struct {
	Retried   int
	Recorded  int
	Deferred  int
	Recovered int
}

// Reconciler periodically retries the ledger writes that the recorder could
// not complete and re-enqueues those of terminal proposals that are missing
// both a ledger record and a pending write.
type Reconciler struct {
	repoManager ports.RepoManager
	recorder    *Recorder
	clock       clock.Clock
	cfg         ReconcilerConfig

	lock   sync.Mutex
	quitCh chan struct{}
	doneCh chan struct{}
}

func NewReconciler(
	repoManager ports.RepoManager, recorder *Recorder, clk clock.Clock,
	cfg ReconcilerConfig,
) (*Reconciler, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if recorder == nil {
		return nil, fmt.Errorf("missing ledger recorder")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReconcileInterval
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Ticker == nil {
		cfg.Ticker = ticker.New(cfg.Interval)
	}
	return &Reconciler{
		repoManager: repoManager,
		recorder:    recorder,
		clock:       clk,
		cfg:         cfg,
	}, nil
}

// Start runs a reconciliation round at every interval until Stop is called.
func (r *Reconciler) Start() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.quitCh != nil {
		return
	}
	r.quitCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go func(quitCh, doneCh chan struct{}) {
		defer close(doneCh)

		r.cfg.Ticker.Resume()
		defer r.cfg.Ticker.Pause()

		for {
			select {
			case <-quitCh:
				return
			case <-r.cfg.Ticker.Ticks():
				ctx, cancel := context.WithTimeout(
					context.Background(), r.cfg.Interval,
				)
				if _, err := r.Reconcile(ctx); err != nil {
					log.WithError(err).Warn("ledger reconciliation failed")
				}
				cancel()
			}
		}
	}(r.quitCh, r.doneCh)

	log.Info("ledger reconciler started")
}

// Stop makes the reconciler exit after the round in progress, if any.
func (r *Reconciler) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.quitCh == nil {
		return
	}
	close(r.quitCh)
	<-r.doneCh
	r.quitCh, r.doneCh = nil, nil

	log.Info("ledger reconciler stopped")
}

// Reconcile runs a single reconciliation round.
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileSummary, error) {
	summary := &ReconcileSummary{}
	repo := r.repoManager.LedgerRepository()
	threshold := r.clock.Now().Add(-r.cfg.GracePeriod)

	orphans, err := repo.GetUnattestedProposals(ctx, threshold, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	for _, p := range orphans {
		swap, err := r.repoManager.SwapRepository().GetSwap(ctx, p.SwapId)
		if err != nil {
			log.WithError(err).Warnf("failed to get swap %s", p.SwapId)
			continue
		}

		entry := domain.LedgerEntry{
			SubjectId:    p.Id,
			SubjectType:  domain.SubjectProposal,
			Outcome:      p.Status.String(),
			Participants: []string{swap.OwnerId, p.ProposerId},
			Timestamp:    p.UpdatedAt,
		}
		log.WithFields(log.Fields{
			"proposal": p.Id,
			"swap":     p.SwapId,
			"outcome":  entry.Outcome,
		}).Warn("inconsistency: terminal proposal not attested on ledger")

		if err := repo.AddPendingWrite(
			ctx, domain.NewPendingLedgerWrite(entry, r.clock.Now()),
		); err != nil {
			log.WithError(err).Warnf(
				"failed to enqueue ledger write for proposal %s", p.Id,
			)
			continue
		}
		summary.Recovered++
	}

	writes, err := repo.GetPendingWrites(ctx, threshold, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	for _, w := range writes {
		if ctx.Err() != nil {
			break
		}
		summary.Retried++
		if _, err := r.recorder.Record(ctx, w.LedgerEntry); err != nil {
			summary.Deferred++
			continue
		}
		summary.Recorded++
	}

	if summary.Retried > 0 || summary.Recovered > 0 {
		log.WithFields(log.Fields{
			"retried":   summary.Retried,
			"recorded":  summary.Recorded,
			"deferred":  summary.Deferred,
			"recovered": summary.Recovered,
		}).Info("ledger reconciliation completed")
	}
	return summary, nil
}
