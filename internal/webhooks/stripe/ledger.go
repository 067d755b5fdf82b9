package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/tatame/tatame-backend/pkg/redis"
)

const (
	ledgerScope = "stripe-events"

	// Stripe retries a failed delivery for up to three days.
	DefaultLedgerTTL = 72 * time.Hour
)

// EventLedger records which Stripe deliveries have been claimed so retries of
// an applied event are acknowledged without touching users again.
type EventLedger struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewEventLedger(store redis.IdempotencyStore, ttl time.Duration) (*EventLedger, error) {
	if store == nil {
		return nil, errors.New("event ledger requires a redis store")
	}
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &EventLedger{store: store, ttl: ttl}, nil
}

// Claim returns true when this delivery is the first for the event id. The
// event type is stored as the value to make duplicates easy to inspect.
func (l *EventLedger) Claim(ctx context.Context, event *stripe.Event) (bool, error) {
	if event == nil || event.ID == "" {
		return false, errors.New("stripe event id required")
	}
	claimed, err := l.store.SetNX(ctx, l.key(event.ID), string(event.Type), l.ttl)
	if err != nil {
		return false, fmt.Errorf("claim stripe event %s: %w", event.ID, err)
	}
	return claimed, nil
}

// Release forgets a claim after a failed apply so Stripe's retry is processed.
func (l *EventLedger) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("stripe event id required")
	}
	return l.store.Del(ctx, l.key(eventID))
}

// ClaimedType reports the event type recorded for a claimed id, or "".
func (l *EventLedger) ClaimedType(ctx context.Context, eventID string) (string, error) {
	value, err := l.store.Get(ctx, l.key(eventID))
	if err != nil {
		if redis.IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (l *EventLedger) key(eventID string) string {
	return l.store.IdempotencyKey(ledgerScope, eventID)
}
