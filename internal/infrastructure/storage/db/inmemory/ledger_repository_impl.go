package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

type ledgerRepositoryImpl struct {
	store *store
}

// NewLedgerRepositoryImpl returns a new inmemory LedgerRepository
// implementation.
func NewLedgerRepositoryImpl(store *store) domain.LedgerRepository {
	return &ledgerRepositoryImpl{store}
}

func (r *ledgerRepositoryImpl) AddRecord(
	ctx context.Context, record *domain.LedgerRecord,
) (bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	key := recordKey(record.SubjectId, record.Outcome)
	if _, ok := r.store.records[key]; ok {
		return false, nil
	}
	rec := *record
	rec.Participants = append([]string{}, record.Participants...)
	r.store.records[key] = rec
	return true, nil
}

func (r *ledgerRepositoryImpl) GetRecord(
	ctx context.Context, subjectId, outcome string,
) (*domain.LedgerRecord, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	record, ok := r.store.records[recordKey(subjectId, outcome)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

func (r *ledgerRepositoryImpl) GetRecordsForSubject(
	ctx context.Context, subjectId string,
) ([]domain.LedgerRecord, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	records := make([]domain.LedgerRecord, 0)
	for _, rec := range r.store.records {
		if rec.SubjectId == subjectId {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (r *ledgerRepositoryImpl) AddPendingWrite(
	ctx context.Context, write *domain.PendingLedgerWrite,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	key := recordKey(write.SubjectId, write.Outcome)
	if _, ok := r.store.pendingWrites[key]; ok {
		return nil
	}
	r.store.pendingWrites[key] = *write
	return nil
}

func (r *ledgerRepositoryImpl) GetPendingWrite(
	ctx context.Context, subjectId, outcome string,
) (*domain.PendingLedgerWrite, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	write, ok := r.store.pendingWrites[recordKey(subjectId, outcome)]
	if !ok {
		return nil, ErrPendingWriteNotFound
	}
	return &write, nil
}

func (r *ledgerRepositoryImpl) UpdatePendingWrite(
	ctx context.Context, write *domain.PendingLedgerWrite,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	key := recordKey(write.SubjectId, write.Outcome)
	if _, ok := r.store.pendingWrites[key]; !ok {
		return ErrPendingWriteNotFound
	}
	r.store.pendingWrites[key] = *write
	return nil
}

func (r *ledgerRepositoryImpl) DeletePendingWrite(
	ctx context.Context, subjectId, outcome string,
) error {
	unlock := r.store.lock(ctx)
	defer unlock()

	delete(r.store.pendingWrites, recordKey(subjectId, outcome))
	return nil
}

func (r *ledgerRepositoryImpl) GetPendingWrites(
	ctx context.Context, queuedBefore time.Time, limit int,
) ([]domain.PendingLedgerWrite, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	writes := make([]domain.PendingLedgerWrite, 0)
	for _, w := range r.store.pendingWrites {
		if w.State == domain.PendingWriteDeferred ||
			w.UpdatedAt.Before(queuedBefore) {
			writes = append(writes, w)
		}
	}
	sort.SliceStable(writes, func(i, j int) bool {
		return writes[i].CreatedAt.Before(writes[j].CreatedAt)
	})
	if limit > 0 && len(writes) > limit {
		writes = writes[:limit]
	}
	return writes, nil
}

func (r *ledgerRepositoryImpl) GetUnattestedProposals(
	ctx context.Context, updatedBefore time.Time, limit int,
) ([]domain.Proposal, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	proposals := make([]domain.Proposal, 0)
	for _, p := range r.store.proposals {
		if !p.Status.IsTerminal() || !p.UpdatedAt.Before(updatedBefore) {
			continue
		}
		key := recordKey(p.Id, p.Status.String())
		if _, ok := r.store.records[key]; ok {
			continue
		}
		if _, ok := r.store.pendingWrites[key]; ok {
			continue
		}
		proposals = append(proposals, p)
	}
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].UpdatedAt.Before(proposals[j].UpdatedAt)
	})
	if limit > 0 && len(proposals) > limit {
		proposals = proposals[:limit]
	}
	return proposals, nil
}

func recordKey(subjectId, outcome string) string {
	return domain.LedgerEntry{SubjectId: subjectId, Outcome: outcome}.
		IdempotencyKey()
}
