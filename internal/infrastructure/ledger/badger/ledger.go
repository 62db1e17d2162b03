package badgerledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/badgerutil"
	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"lukechampine.com/blake3"
)

const (
	ledgerDir = "ledger"
	tipKey    = "tip"
)

var (
	// ErrBrokenChain is returned by Verify if the hash of an entry does not
	// match the chain.
	ErrBrokenChain = errors.New("ledger hash chain is broken")
	// ErrLedgerClosed is returned when submitting to a closed ledger.
	ErrLedgerClosed = errors.New("ledger is closed")
)

// entryRecord is the append-only row stored for every attested entry. Every
// record is chained to the previous one by including its hash.
type entryRecord struct {
	Key          string
	Seq          uint64
	SubjectId    string
	SubjectType  string
	Outcome      string
	Participants []string
	Timestamp    time.Time
	PrevHash     string
	Hash         string
}

type chainTip struct {
	Seq  uint64
	Hash string
}

type ledger struct {
	store *badgerhold.Store
	lock  *sync.Mutex
	quit  chan struct{}
	once  *sync.Once
}

// NewLedger returns an embedded append-only ledger stored in the given
// datadir. An empty datadir makes the ledger live in memory only.
func NewLedger(baseDbDir string, logger badger.Logger) (ports.Ledger, error) {
	var dir string
	if len(baseDbDir) > 0 {
		dir = filepath.Join(baseDbDir, ledgerDir)
	}

	l := &ledger{
		lock: &sync.Mutex{},
		quit: make(chan struct{}),
		once: &sync.Once{},
	}
	store, err := badgerutil.OpenStore(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	l.store = store

	if err := l.Verify(); err != nil {
		store.Close()
		return nil, err
	}
	return l, nil
}

func (l *ledger) Submit(
	ctx context.Context, entry domain.LedgerEntry,
) (string, error) {
	select {
	case <-l.quit:
		return "", ErrLedgerClosed
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	key := entry.IdempotencyKey()

	var existing entryRecord
	err := l.store.Get(key, &existing)
	if err == nil {
		return existing.Hash, nil
	}
	if err != badgerhold.ErrNotFound {
		return "", err
	}

	tip, err := l.getTip()
	if err != nil {
		return "", err
	}

	record := entryRecord{
		Key:          key,
		Seq:          tip.Seq + 1,
		SubjectId:    entry.SubjectId,
		SubjectType:  string(entry.SubjectType),
		Outcome:      entry.Outcome,
		Participants: entry.Participants,
		Timestamp:    entry.Timestamp.UTC(),
		PrevHash:     tip.Hash,
	}
	hash, err := hashRecord(record)
	if err != nil {
		return "", err
	}
	record.Hash = hash

	if err := l.store.Badger().Update(func(tx *badger.Txn) error {
		if err := l.store.TxInsert(tx, key, &record); err != nil {
			return err
		}
		return l.store.TxUpsert(tx, tipKey, &chainTip{record.Seq, record.Hash})
	}); err != nil {
		return "", err
	}

	log.Debugf("ledger: appended entry %s at height %d", key, record.Seq)
	return record.Hash, nil
}

// Verify walks the whole chain and checks that every record hash matches.
func (l *ledger) Verify() error {
	var records []entryRecord
	if err := l.store.Find(
		&records, badgerhold.Where("Seq").Gt(uint64(0)).SortBy("Seq"),
	); err != nil {
		return err
	}

	prev := ""
	for i, r := range records {
		if r.Seq != uint64(i+1) || r.PrevHash != prev {
			return fmt.Errorf("%w at height %d", ErrBrokenChain, r.Seq)
		}
		hash, err := hashRecord(r)
		if err != nil {
			return err
		}
		if hash != r.Hash {
			return fmt.Errorf("%w at height %d", ErrBrokenChain, r.Seq)
		}
		prev = r.Hash
	}
	return nil
}

func (l *ledger) Close() error {
	var err error
	l.once.Do(func() {
		close(l.quit)
		l.lock.Lock()
		defer l.lock.Unlock()
		err = l.store.Close()
	})
	return err
}

func (l *ledger) getTip() (*chainTip, error) {
	var tip chainTip
	if err := l.store.Get(tipKey, &tip); err != nil {
		if err == badgerhold.ErrNotFound {
			return &chainTip{}, nil
		}
		return nil, err
	}
	return &tip, nil
}

func hashRecord(r entryRecord) (string, error) {
	r.Hash = ""
	buf, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}
