package webhookpubsub

import (
	"path/filepath"
	"sort"

	"github.com/bushboy/bookingswap-sub023/pkg/badgerutil"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

const webhookDir = "webhooks"

type store struct {
	db *badgerhold.Store
}

func newStore(baseDbDir string, logger badger.Logger) (*store, error) {
	var dir string
	if len(baseDbDir) > 0 {
		dir = filepath.Join(baseDbDir, webhookDir)
	}
	db, err := badgerutil.OpenStore(dir, logger)
	if err != nil {
		return nil, err
	}
	return &store{db}, nil
}

func (s *store) add(sub *Subscription) error {
	if err := s.db.Insert(sub.ID, sub); err != nil {
		if err == badgerhold.ErrKeyExists {
			return nil
		}
		return err
	}
	return nil
}

func (s *store) remove(id string) error {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func (s *store) listForTopic(topic string) (subscriptions, error) {
	var subs subscriptions
	if err := s.db.Find(
		&subs, badgerhold.Where("Event").Eq(topic),
	); err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *store) close() error {
	return s.db.Close()
}
