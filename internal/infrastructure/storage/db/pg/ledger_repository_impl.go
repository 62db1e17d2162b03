package postgresdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg/sqlc/queries"
)

type ledgerRepositoryImpl struct {
	querier func(ctx context.Context) *queries.Queries
}

func NewLedgerRepositoryImpl(
	querier func(ctx context.Context) *queries.Queries,
) domain.LedgerRepository {
	return &ledgerRepositoryImpl{querier}
}

func (l *ledgerRepositoryImpl) AddRecord(
	ctx context.Context, record *domain.LedgerRecord,
) (bool, error) {
	affected, err := l.querier(ctx).InsertLedgerRecord(
		ctx, queries.InsertLedgerRecordParams{
			ID:           record.Id,
			SubjectID:    record.SubjectId,
			SubjectType:  string(record.SubjectType),
			Outcome:      record.Outcome,
			Participants: nonNil(record.Participants),
			RecordedAt:   record.Timestamp,
			TxHandle:     record.TxHandle,
		},
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (l *ledgerRepositoryImpl) GetRecord(
	ctx context.Context, subjectId, outcome string,
) (*domain.LedgerRecord, error) {
	row, err := l.querier(ctx).GetLedgerRecord(
		ctx, queries.GetLedgerRecordParams{
			SubjectID: subjectId,
			Outcome:   outcome,
		},
	)
	if err != nil {
		return nil, notFound("ledger record", err)
	}
	return toLedgerRecord(row), nil
}

func (l *ledgerRepositoryImpl) GetRecordsForSubject(
	ctx context.Context, subjectId string,
) ([]domain.LedgerRecord, error) {
	rows, err := l.querier(ctx).GetLedgerRecordsBySubject(ctx, subjectId)
	if err != nil {
		return nil, err
	}

	records := make([]domain.LedgerRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *toLedgerRecord(row))
	}
	return records, nil
}

func (l *ledgerRepositoryImpl) AddPendingWrite(
	ctx context.Context, write *domain.PendingLedgerWrite,
) error {
	return l.querier(ctx).InsertPendingWrite(
		ctx, queries.InsertPendingWriteParams{
			SubjectID:      write.SubjectId,
			SubjectType:    string(write.SubjectType),
			Outcome:        write.Outcome,
			Participants:   nonNil(write.Participants),
			EntryTimestamp: write.Timestamp,
			State:          string(write.State),
			Attempts:       int32(write.Attempts),
			LastError:      write.LastError,
			CreatedAt:      write.CreatedAt,
			UpdatedAt:      write.UpdatedAt,
		},
	)
}

func (l *ledgerRepositoryImpl) GetPendingWrite(
	ctx context.Context, subjectId, outcome string,
) (*domain.PendingLedgerWrite, error) {
	row, err := l.querier(ctx).GetPendingWrite(
		ctx, queries.GetPendingWriteParams{
			SubjectID: subjectId,
			Outcome:   outcome,
		},
	)
	if err != nil {
		return nil, notFound("pending ledger write", err)
	}
	return toPendingWrite(row), nil
}

func (l *ledgerRepositoryImpl) UpdatePendingWrite(
	ctx context.Context, write *domain.PendingLedgerWrite,
) error {
	affected, err := l.querier(ctx).UpdatePendingWrite(
		ctx, queries.UpdatePendingWriteParams{
			SubjectID: write.SubjectId,
			Outcome:   write.Outcome,
			State:     string(write.State),
			Attempts:  int32(write.Attempts),
			LastError: write.LastError,
			UpdatedAt: write.UpdatedAt,
		},
	)
	if err != nil {
		return err
	}
	if affected <= 0 {
		return fmt.Errorf("pending ledger write %w", domain.ErrNotFound)
	}
	return nil
}

func (l *ledgerRepositoryImpl) DeletePendingWrite(
	ctx context.Context, subjectId, outcome string,
) error {
	return l.querier(ctx).DeletePendingWrite(
		ctx, queries.DeletePendingWriteParams{
			SubjectID: subjectId,
			Outcome:   outcome,
		},
	)
}

func (l *ledgerRepositoryImpl) GetPendingWrites(
	ctx context.Context, queuedBefore time.Time, limit int,
) ([]domain.PendingLedgerWrite, error) {
	rows, err := l.querier(ctx).GetPendingWrites(
		ctx, queries.GetPendingWritesParams{
			UpdatedAt: queuedBefore,
			Limit:     int32(limit),
		},
	)
	if err != nil {
		return nil, err
	}

	writes := make([]domain.PendingLedgerWrite, 0, len(rows))
	for _, row := range rows {
		writes = append(writes, *toPendingWrite(row))
	}
	return writes, nil
}

func (l *ledgerRepositoryImpl) GetUnattestedProposals(
	ctx context.Context, updatedBefore time.Time, limit int,
) ([]domain.Proposal, error) {
	rows, err := l.querier(ctx).GetUnattestedProposals(
		ctx, queries.GetUnattestedProposalsParams{
			UpdatedAt: updatedBefore,
			Limit:     int32(limit),
		},
	)
	if err != nil {
		return nil, err
	}
	return toProposals(rows)
}

func toLedgerRecord(row queries.LedgerRecord) *domain.LedgerRecord {
	return &domain.LedgerRecord{
		Id:           row.ID,
		SubjectId:    row.SubjectID,
		SubjectType:  domain.SubjectType(row.SubjectType),
		Outcome:      row.Outcome,
		Participants: row.Participants,
		Timestamp:    row.RecordedAt,
		TxHandle:     row.TxHandle,
	}
}

func toPendingWrite(row queries.PendingLedgerWrite) *domain.PendingLedgerWrite {
	return &domain.PendingLedgerWrite{
		LedgerEntry: domain.LedgerEntry{
			SubjectId:    row.SubjectID,
			SubjectType:  domain.SubjectType(row.SubjectType),
			Outcome:      row.Outcome,
			Participants: row.Participants,
			Timestamp:    row.EntryTimestamp,
		},
		State:     domain.PendingWriteState(row.State),
		Attempts:  int(row.Attempts),
		LastError: row.LastError,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nonNil(participants []string) []string {
	if participants == nil {
		return []string{}
	}
	return participants
}
