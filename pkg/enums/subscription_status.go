package enums

import "fmt"

// SubscriptionStatus is the Stripe subscription state copied onto the user
// row by the billing webhook.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// subscriptionEntitlement marks which states still open paid features. A past-due member
// keeps access while Stripe retries the card.
var subscriptionEntitlement = map[SubscriptionStatus]bool{
	SubscriptionStatusTrialing:          true,
	SubscriptionStatusActive:            true,
	SubscriptionStatusPastDue:           true,
	SubscriptionStatusCanceled:          false,
	SubscriptionStatusIncomplete:        false,
	SubscriptionStatusIncompleteExpired: false,
	SubscriptionStatusUnpaid:            false,
	SubscriptionStatusPaused:            false,
}

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool {
	_, ok := subscriptionEntitlement[s]
	return ok
}

func (s SubscriptionStatus) IsEntitled() bool {
	return subscriptionEntitlement[s]
}

// IsTerminal reports states Stripe never moves out of; a new subscription
// is needed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCanceled || s == SubscriptionStatusIncompleteExpired
}

func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	if s := SubscriptionStatus(value); s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}
