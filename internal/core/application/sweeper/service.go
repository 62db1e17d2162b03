package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/settlement"
	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/stats"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultInterval    = 5 * time.Minute
	DefaultItemTimeout = 30 * time.Second
	DefaultBatchSize   = 100

	lockKey = "swapd:sweeper"
)

var (
	// ErrSweepInProgress is returned by Tick when the previous sweep has not
	// completed yet.
	ErrSweepInProgress = errors.New("sweep already in progress")
	// ErrSweepLocked is returned by Tick when another replica holds the
	// sweep lock.
	ErrSweepLocked = errors.New("sweep lock held by another replica")
)

// State of the sweeper.
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Expirer is the coordinator operation the sweeper drives swaps through.
type Expirer interface {
	Expire(ctx context.Context, swapId string) (settlement.Result, error)
}

type Config struct {
	Interval    time.Duration
	ItemTimeout time.Duration
	BatchSize   int

	// Ticker triggers the sweeps of Start. Defaults to a ticker firing at
	// every Interval.
	Ticker ticker.Ticker
}

// Status reports what the sweeper is doing and how its last run went.
type Status struct {
	State        string        `json:"state"`
	LastRunAt    time.Time     `json:"lastRunAt"`
	LastDuration time.Duration `json:"lastDuration"`
	Processed    int           `json:"processed"`
	Failed       int           `json:"failed"`
	Conflicts    int           `json:"conflicts"`
	LastError    string        `json:"lastError,omitempty"`
	TotalRuns    uint64        `json:"totalRuns"`
	SkippedTicks uint64        `json:"skippedTicks"`
}

// Healthy returns false if the last sweep did not manage to process any of
// the swaps it found.
func (s Status) Healthy() bool {
	return len(s.LastError) <= 0 && (s.Failed <= 0 || s.Processed > 0)
}

// Service periodically finds the open swaps whose deadline has passed and
// expires them through the settlement coordinator. Sweeps never overlap:
// a tick due while the previous one is running is skipped, and an optional
// shared lock prevents overlapping sweeps among replicas.
type Service struct {
	repoManager ports.RepoManager
	expirer     Expirer
	locker      ports.Locker
	clock       clock.Clock
	cfg         Config

	state        int32
	skippedTicks uint64

	statusLock sync.RWMutex
	status     Status

	lock   sync.Mutex
	quitCh chan struct{}
	doneCh chan struct{}
}

func NewService(
	repoManager ports.RepoManager, expirer Expirer, locker ports.Locker,
	clk clock.Clock, cfg Config,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if expirer == nil {
		return nil, fmt.Errorf("missing settlement coordinator")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Ticker == nil {
		cfg.Ticker = ticker.New(cfg.Interval)
	}
	return &Service{
		repoManager: repoManager,
		expirer:     expirer,
		locker:      locker,
		clock:       clk,
		cfg:         cfg,
	}, nil
}

// Start runs a sweep at every interval until Stop is called.
func (s *Service) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quitCh != nil {
		return
	}
	s.quitCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(s.quitCh, s.doneCh)

	log.Infof("expiration sweeper started with interval %s", s.cfg.Interval)
}

// Stop interrupts the sweep in progress, if any, and waits for it to exit.
func (s *Service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quitCh == nil {
		return
	}
	close(s.quitCh)
	<-s.doneCh
	s.quitCh, s.doneCh = nil, nil

	log.Info("expiration sweeper stopped")
}

// Status returns a snapshot of the sweeper status.
func (s *Service) Status() Status {
	s.statusLock.RLock()
	status := s.status
	s.statusLock.RUnlock()

	status.State = State(atomic.LoadInt32(&s.state)).String()
	status.SkippedTicks = atomic.LoadUint64(&s.skippedTicks)
	return status
}

// Tick runs a single sweep. It returns ErrSweepInProgress without doing
// anything if another sweep is running.
func (s *Service) Tick(ctx context.Context) (*Status, error) {
	if !atomic.CompareAndSwapInt32(
		&s.state, int32(StateIdle), int32(StateRunning),
	) {
		atomic.AddUint64(&s.skippedTicks, 1)
		stats.SweeperTicksTotal.WithLabelValues("skipped").Inc()
		log.Warn("sweeper tick skipped, previous sweep still running")
		return nil, ErrSweepInProgress
	}
	defer atomic.StoreInt32(&s.state, int32(StateIdle))

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.Interval)
		if err != nil {
			stats.SweeperTicksTotal.WithLabelValues("failed").Inc()
			log.WithError(err).Warn("failed to acquire sweep lock")
			return nil, err
		}
		if !ok {
			atomic.AddUint64(&s.skippedTicks, 1)
			stats.SweeperTicksTotal.WithLabelValues("skipped").Inc()
			log.Debug("sweeper tick skipped, lock held by another replica")
			return nil, ErrSweepLocked
		}
		defer unlock()
	}

	return s.sweep(ctx)
}

func (s *Service) loop(quitCh, doneCh chan struct{}) {
	defer close(doneCh)

	var wg sync.WaitGroup
	defer wg.Wait()

	s.cfg.Ticker.Resume()
	defer s.cfg.Ticker.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-quitCh
		cancel()
	}()

	for {
		select {
		case <-quitCh:
			return
		case <-s.cfg.Ticker.Ticks():
			// Ticks are run in their own goroutine so that a slow sweep
			// leads to skipped ticks rather than to ticks piling up.
			wg.Add(1)
			go func() {
				defer wg.Done()
				//nolint
				s.Tick(ctx)
			}()
		}
	}
}

func (s *Service) sweep(ctx context.Context) (*Status, error) {
	start := s.clock.Now()
	status := Status{LastRunAt: start}
	seen := make(map[string]struct{})

	var sweepErr error
	for ctx.Err() == nil {
		swaps, err := s.repoManager.SwapRepository().GetExpiredSwaps(
			ctx, s.clock.Now(), s.cfg.BatchSize+len(seen),
		)
		if err != nil {
			sweepErr = err
			break
		}

		batch := make([]domain.Swap, 0, len(swaps))
		for _, swap := range swaps {
			if _, ok := seen[swap.Id]; ok {
				continue
			}
			seen[swap.Id] = struct{}{}
			batch = append(batch, swap)
			if len(batch) >= s.cfg.BatchSize {
				break
			}
		}
		if len(batch) <= 0 {
			break
		}

		for _, swap := range batch {
			if ctx.Err() != nil {
				break
			}
			s.expire(ctx, swap, &status)
		}
	}
	if sweepErr == nil && ctx.Err() != nil {
		sweepErr = ctx.Err()
	}

	status.LastDuration = s.clock.Now().Sub(start)
	if sweepErr != nil {
		status.LastError = sweepErr.Error()
	}

	s.statusLock.Lock()
	status.TotalRuns = s.status.TotalRuns + 1
	s.status = status
	s.statusLock.Unlock()

	result := "completed"
	if sweepErr != nil {
		result = "failed"
	}
	stats.SweeperTicksTotal.WithLabelValues(result).Inc()
	stats.SweeperLastRun.Set(float64(start.Unix()))

	logger := log.WithFields(log.Fields{
		"processed": status.Processed,
		"failed":    status.Failed,
		"conflicts": status.Conflicts,
		"duration":  status.LastDuration,
	})
	if sweepErr != nil {
		logger.WithError(sweepErr).Warn("expiration sweep aborted")
	} else if status.Processed+status.Failed+status.Conflicts > 0 {
		logger.Info("expiration sweep completed")
	} else {
		logger.Debug("expiration sweep completed")
	}

	out := s.Status()
	return &out, sweepErr
}

// expire drives a single swap through the coordinator. Failures are logged
// and counted without affecting the rest of the sweep.
func (s *Service) expire(ctx context.Context, swap domain.Swap, status *Status) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	_, err := s.expirer.Expire(ctx, swap.Id)
	switch {
	case err == nil:
		status.Processed++
		stats.SweeperItemsTotal.WithLabelValues("expired").Inc()
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidState):
		// Someone else settled the swap after it was listed as expired.
		status.Conflicts++
		stats.SweeperItemsTotal.WithLabelValues("conflict").Inc()
		log.WithError(err).WithField("swap", swap.Id).
			Debug("swap already finalized, skipping")
	default:
		status.Failed++
		stats.SweeperItemsTotal.WithLabelValues("failed").Inc()
		log.WithError(err).WithField("swap", swap.Id).
			Warn("failed to expire swap")
	}
}
