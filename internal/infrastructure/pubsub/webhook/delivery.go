package webhookpubsub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/golang-jwt/jwt"
)

const (
	topicHeader = "X-Swapd-Topic"
	// maxErrorBody caps how much of a failed reply ends up in the error.
	maxErrorBody = 512
)

// deliverer POSTs the JSON encoded events to the subscribed endpoints.
type deliverer struct {
	client *http.Client
}

func newDeliverer(requestTimeout time.Duration) *deliverer {
	return &deliverer{&http.Client{Timeout: requestTimeout}}
}

// deliver sends the payload to the endpoint of the subscription. Secured
// subscriptions get a bearer token signed with their secret, so that the
// receiver can tell the event comes from this daemon.
func (d *deliverer) deliver(
	ctx context.Context, sub Subscription, event domain.SettlementEvent,
	payload []byte,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(topicHeader, string(event.Topic))

	if sub.IsSecured() {
		token, err := signEvent(sub.Secret, event)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		//nolint
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf(
		"webhook %s replied with status %d: %s", sub.ID, resp.StatusCode, body,
	)
}

func signEvent(secret string, event domain.SettlementEvent) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat":      event.OccurredAt.Unix(),
		"topic":    string(event.Topic),
		"swap":     event.SwapId,
		"proposal": event.ProposalId,
	})
	return token.SignedString([]byte(secret))
}
