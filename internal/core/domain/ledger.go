package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubjectType tells whether a ledger entry attests the outcome of a swap or
// of a proposal.
type SubjectType string

const (
	SubjectSwap     SubjectType = "swap"
	SubjectProposal SubjectType = "proposal"
)

// PendingWriteState tells whether a queued ledger write is still in the hands
// of the recorder or has exhausted its attempts.
type PendingWriteState string

const (
	PendingWriteQueued   PendingWriteState = "queued"
	PendingWriteDeferred PendingWriteState = "deferred"
)

// LedgerEntry is the outcome to be attested on the external ledger.
type LedgerEntry struct {
	SubjectId    string
	SubjectType  SubjectType
	Outcome      string
	Participants []string
	Timestamp    time.Time
}

// IdempotencyKey returns the key that identifies an entry across retries.
func (e LedgerEntry) IdempotencyKey() string {
	return fmt.Sprintf("%s:%s", e.SubjectId, e.Outcome)
}

// LedgerRecord is the write-once proof that an outcome has been attested on
// the external ledger.
type LedgerRecord struct {
	Id           string
	SubjectId    string
	SubjectType  SubjectType
	Outcome      string
	Participants []string
	Timestamp    time.Time
	TxHandle     string
}

// NewLedgerRecord returns the record for an entry confirmed with the given
// ledger transaction handle.
func NewLedgerRecord(entry LedgerEntry, txHandle string) *LedgerRecord {
	return &LedgerRecord{
		Id:           uuid.New().String(),
		SubjectId:    entry.SubjectId,
		SubjectType:  entry.SubjectType,
		Outcome:      entry.Outcome,
		Participants: entry.Participants,
		Timestamp:    entry.Timestamp,
		TxHandle:     txHandle,
	}
}

// PendingLedgerWrite marks a subject whose outcome has been committed to the
// database but not yet attested on the ledger.
type PendingLedgerWrite struct {
	LedgerEntry
	State     PendingWriteState
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPendingLedgerWrite returns a queued write for the given entry.
func NewPendingLedgerWrite(entry LedgerEntry, now time.Time) *PendingLedgerWrite {
	return &PendingLedgerWrite{
		LedgerEntry: entry,
		State:       PendingWriteQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Defer marks the write as failed after the given number of attempts.
func (w *PendingLedgerWrite) Defer(attempts int, err error, now time.Time) {
	w.State = PendingWriteDeferred
	w.Attempts += attempts
	if err != nil {
		w.LastError = err.Error()
	}
	w.UpdatedAt = now
}
