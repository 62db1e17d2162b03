package ports

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
)

// Notifier delivers settlement events to the notification collaborator.
type Notifier interface {
	// Publish sends the given event. Delivery is best effort, callers do not
	// retry on failure.
	Publish(ctx context.Context, event domain.SettlementEvent) error
	Close() error
}

// Subscription is a webhook endpoint registered for a topic.
type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// SubscriptionManager lets operators manage the endpoints notified by a
// Notifier.
type SubscriptionManager interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns all the subscriptions for a topic.
	ListSubscriptionsForTopic(topic string) []Subscription
}
