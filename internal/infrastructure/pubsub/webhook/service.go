package webhookpubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/pkg/circuitbreaker"
	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

const defaultRequestTimeout = 15 * time.Second

// Service is a notifier that POSTs every settlement event to the endpoints
// subscribed for its topic, or for any topic.
type Service interface {
	ports.Notifier
	ports.SubscriptionManager
}

type service struct {
	store     *store
	deliverer *deliverer
	cb        *gobreaker.CircuitBreaker
}

// NewService returns a webhook notifier whose subscriptions are persisted in
// the given datadir, or in memory if empty.
func NewService(
	baseDbDir string, logger badger.Logger, requestTimeout time.Duration,
) (Service, error) {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	s, err := newStore(baseDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening webhook db: %w", err)
	}

	return &service{
		store:     s,
		deliverer: newDeliverer(requestTimeout),
		cb:        circuitbreaker.NewCircuitBreaker("webhook"),
	}, nil
}

func (ws *service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	if err := ws.store.add(sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(id string) error {
	return ws.store.remove(id)
}

func (ws *service) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	subs, err := ws.listSubscriptionsForTopic(topic)
	if err != nil {
		log.WithError(err).Warn("webhook: failed to list subscriptions")
		return nil
	}
	return subs.toPortable()
}

func (ws *service) Publish(
	ctx context.Context, event domain.SettlementEvent,
) error {
	subs, err := ws.listSubscriptionsForTopic(string(event.Topic))
	if err != nil {
		return err
	}
	if len(subs) <= 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error {
			return ws.notify(ctx, sub, event, payload)
		})
	}
	return eg.Wait()
}

func (ws *service) Close() error {
	return ws.store.close()
}

func (ws *service) listSubscriptionsForTopic(topic string) (subscriptions, error) {
	subs, err := ws.store.listForTopic(topic)
	if err != nil {
		return nil, err
	}
	if topic != string(domain.TopicAll) {
		subsForAnyTopic, err := ws.store.listForTopic(string(domain.TopicAll))
		if err != nil {
			return nil, err
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs, nil
}

// notify delivers the event through the circuit breaker shared by all
// endpoints, so that a flood of failing deliveries stops hitting the network.
func (ws *service) notify(
	ctx context.Context, sub Subscription, event domain.SettlementEvent,
	payload []byte,
) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		return nil, ws.deliverer.deliver(ctx, sub, event, payload)
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"webhook": sub.ID,
			"topic":   event.Topic,
		}).Debug("webhook delivery failed")
	}
	return err
}
