package noop

import (
	"context"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type notifier struct{}

// NewNotifier returns a notifier that only logs the events.
func NewNotifier() ports.Notifier {
	return notifier{}
}

func (notifier) Publish(_ context.Context, event domain.SettlementEvent) error {
	log.WithFields(log.Fields{
		"topic":    event.Topic,
		"swap":     event.SwapId,
		"proposal": event.ProposalId,
		"outcome":  event.Outcome,
	}).Debug("settlement event")
	return nil
}

func (notifier) Close() error {
	return nil
}
