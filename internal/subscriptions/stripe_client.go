package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	pkgstripe "github.com/tatame/tatame-backend/pkg/stripe"
)

// StripeGateway exposes the subset of Stripe operations the subscription service needs.
type StripeGateway interface {
	ListActivePrices(ctx context.Context) ([]*stripe.Price, error)
	CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
	CreateSubscription(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewStripeClient wraps the configured Stripe client so the subscription service can be tested.
func NewStripeClient(client *pkgstripe.Client) StripeGateway {
	if client == nil || client.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: client.API()}
}

func (w *stripeClientWrapper) ListActivePrices(ctx context.Context) ([]*stripe.Price, error) {
	params := &stripe.PriceListParams{Active: stripe.Bool(true)}
	params.AddExpand("data.product")

	var out []*stripe.Price
	for price, err := range w.api.V1Prices.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		out = append(out, price)
	}
	return out, nil
}

func (w *stripeClientWrapper) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	return w.api.V1Customers.Create(ctx, params)
}

func (w *stripeClientWrapper) CreateSubscription(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error) {
	return w.api.V1Subscriptions.Create(ctx, params)
}

func (w *stripeClientWrapper) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return w.api.V1Subscriptions.Retrieve(ctx, id, &stripe.SubscriptionRetrieveParams{})
}

func (w *stripeClientWrapper) CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return w.api.V1Subscriptions.Cancel(ctx, id, &stripe.SubscriptionCancelParams{})
}
