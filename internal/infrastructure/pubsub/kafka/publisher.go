package kafkapubsub

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/segmentio/kafka-go"
)

const topicPrefix = "swapd."

// ErrMissingBrokers is returned if no broker address is given.
var ErrMissingBrokers = errors.New("kafka publisher requires at least one broker")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publisher struct {
	writer messageWriter
}

// NewPublisher returns a notifier that writes every event to the kafka topic
// named after its type, keyed by swap id so that the events of a swap keep
// their order.
func NewPublisher(brokers []string) (ports.Notifier, error) {
	if len(brokers) <= 0 {
		return nil, ErrMissingBrokers
	}
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}), nil
}

func newPublisher(w messageWriter) *publisher {
	return &publisher{w}
}

func (p *publisher) Publish(
	ctx context.Context, event domain.SettlementEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: TopicName(event.Topic),
		Key:   []byte(event.SwapId),
		Value: payload,
		Time:  event.OccurredAt,
	})
}

func (p *publisher) Close() error {
	return p.writer.Close()
}

// TopicName returns the kafka topic where events of the given type are
// written, ie. proposal.accepted -> swapd.proposal_accepted.
func TopicName(topic domain.Topic) string {
	return topicPrefix + strings.ReplaceAll(string(topic), ".", "_")
}
