package inmemory

import (
	"context"
	"sync"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
)

type txKey struct{}

// store holds all the in-memory collections behind a single lock. A
// transaction holds the lock for its whole duration, which serializes
// transactions and makes the ForUpdate reads trivially exclusive.
type store struct {
	locker sync.Mutex

	swaps         map[string]domain.Swap
	proposals     map[string]domain.Proposal
	holdings      map[string]domain.EscrowHolding
	records       map[string]domain.LedgerRecord
	pendingWrites map[string]domain.PendingLedgerWrite
}

func newStore() *store {
	return &store{
		swaps:         make(map[string]domain.Swap),
		proposals:     make(map[string]domain.Proposal),
		holdings:      make(map[string]domain.EscrowHolding),
		records:       make(map[string]domain.LedgerRecord),
		pendingWrites: make(map[string]domain.PendingLedgerWrite),
	}
}

// lock acquires the store lock unless the context belongs to a transaction
// that already holds it.
func (s *store) lock(ctx context.Context) func() {
	if inTransaction(ctx) {
		return func() {}
	}
	s.locker.Lock()
	return s.locker.Unlock
}

func (s *store) snapshot() *store {
	cp := newStore()
	for k, v := range s.swaps {
		cp.swaps[k] = v
	}
	for k, v := range s.proposals {
		cp.proposals[k] = v
	}
	for k, v := range s.holdings {
		cp.holdings[k] = v
	}
	for k, v := range s.records {
		cp.records[k] = v
	}
	for k, v := range s.pendingWrites {
		cp.pendingWrites[k] = v
	}
	return cp
}

func (s *store) restore(cp *store) {
	s.swaps = cp.swaps
	s.proposals = cp.proposals
	s.holdings = cp.holdings
	s.records = cp.records
	s.pendingWrites = cp.pendingWrites
}

func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

type RepoManager struct {
	store *store

	swapRepository     domain.SwapRepository
	proposalRepository domain.ProposalRepository
	escrowRepository   domain.EscrowRepository
	ledgerRepository   domain.LedgerRepository
}

func NewRepoManager() ports.RepoManager {
	store := newStore()

	return &RepoManager{
		store:              store,
		swapRepository:     NewSwapRepositoryImpl(store),
		proposalRepository: NewProposalRepositoryImpl(store),
		escrowRepository:   NewEscrowRepositoryImpl(store),
		ledgerRepository:   NewLedgerRepositoryImpl(store),
	}
}

func (d *RepoManager) SwapRepository() domain.SwapRepository {
	return d.swapRepository
}

func (d *RepoManager) ProposalRepository() domain.ProposalRepository {
	return d.proposalRepository
}

func (d *RepoManager) EscrowRepository() domain.EscrowRepository {
	return d.escrowRepository
}

func (d *RepoManager) LedgerRepository() domain.LedgerRepository {
	return d.ledgerRepository
}

// RunTransaction runs the handler while holding the store lock. All the
// changes made by the handler are discarded if it returns an error.
func (d *RepoManager) RunTransaction(
	ctx context.Context,
	_ bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if inTransaction(ctx) {
		return handler(ctx)
	}

	d.store.locker.Lock()
	defer d.store.locker.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backup := d.store.snapshot()
	res, err := handler(context.WithValue(ctx, txKey{}, true))
	if err != nil {
		d.store.restore(backup)
		return nil, err
	}
	return res, nil
}

func (d *RepoManager) Close() {}
