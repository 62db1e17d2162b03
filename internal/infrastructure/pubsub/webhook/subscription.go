package webhookpubsub

import (
	"errors"
	"net/url"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/google/uuid"
)

var (
	ErrInvalidTopic = errors.New("unknown settlement event topic")
	// ErrInvalidEndpoint is returned if the endpoint is not an absolute http
	// or https url.
	ErrInvalidEndpoint      = errors.New("webhook endpoint must be an http(s) url")
	ErrSubscriptionNotFound = errors.New("webhook not found")
)

// Subscription is an endpoint notified of the settlement events of a topic,
// or of every topic if subscribed to domain.TopicAll.
type Subscription struct {
	ID        string
	Event     string
	Endpoint  string
	Secret    string
	CreatedAt time.Time
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	if !domain.Topic(event).IsValid() {
		return nil, ErrInvalidTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") ||
		len(u.Host) <= 0 {
		return nil, ErrInvalidEndpoint
	}
	return &Subscription{
		ID:        uuid.New().String(),
		Event:     event,
		Endpoint:  endpoint,
		Secret:    secret,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Subscription) Topic() string    { return s.Event }
func (s *Subscription) Id() string       { return s.ID }
func (s *Subscription) NotifyAt() string { return s.Endpoint }
func (s *Subscription) IsSecured() bool  { return len(s.Secret) > 0 }

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		subs = append(subs, &s[i])
	}
	return subs
}
