package subscriptions

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

type fakeGateway struct {
	listActivePricesFn   func(ctx context.Context) ([]*stripe.Price, error)
	createCustomerFn     func(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
	createSubscriptionFn func(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error)
	getSubscriptionFn    func(ctx context.Context, id string) (*stripe.Subscription, error)
	cancelSubscriptionFn func(ctx context.Context, id string) (*stripe.Subscription, error)
}

func (f *fakeGateway) ListActivePrices(ctx context.Context) ([]*stripe.Price, error) {
	return f.listActivePricesFn(ctx)
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	return f.createCustomerFn(ctx, params)
}

func (f *fakeGateway) CreateSubscription(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error) {
	return f.createSubscriptionFn(ctx, params)
}

func (f *fakeGateway) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return f.getSubscriptionFn(ctx, id)
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return f.cancelSubscriptionFn(ctx, id)
}

type fakeUsers struct {
	users   map[uint]*models.User
	updates []map[string]any
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) Update(ctx context.Context, id uint, updates map[string]any) error {
	f.updates = append(f.updates, updates)
	return nil
}

func newTestService(t *testing.T, gateway StripeGateway, users *fakeUsers) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:          users,
		Stripe:         gateway,
		DefaultPriceID: "price_monthly",
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestSubscribeCreatesCustomerAndSubscription(t *testing.T) {
	users := &fakeUsers{users: map[uint]*models.User{
		7: {ID: 7, FirstName: "Helio", LastName: "Gracie", Email: "helio@example.com"},
	}}
	var gotPrice, gotCustomer string
	gateway := &fakeGateway{
		createCustomerFn: func(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
			assert.Equal(t, "7", params.Metadata[metadataUserID])
			return &stripe.Customer{ID: "cus_1"}, nil
		},
		createSubscriptionFn: func(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error) {
			gotCustomer = *params.Customer
			gotPrice = *params.Items[0].Price
			return &stripe.Subscription{
				ID:     "sub_1",
				Status: stripe.SubscriptionStatusIncomplete,
				LatestInvoice: &stripe.Invoice{
					ConfirmationSecret: &stripe.InvoiceConfirmationSecret{ClientSecret: "pi_secret"},
				},
			}, nil
		},
	}
	svc := newTestService(t, gateway, users)

	sub, err := svc.Subscribe(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", gotCustomer)
	assert.Equal(t, "price_monthly", gotPrice)
	assert.Equal(t, "pi_secret", sub.ClientSecret)
	assert.Equal(t, enums.SubscriptionStatusIncomplete, sub.Status)

	require.Len(t, users.updates, 2)
	assert.Equal(t, "cus_1", users.updates[0]["stripe_customer_id"])
	assert.Equal(t, "sub_1", users.updates[1]["stripe_subscription_id"])
}

func TestSubscribeRejectsActiveSubscription(t *testing.T) {
	active := enums.SubscriptionStatusActive
	users := &fakeUsers{users: map[uint]*models.User{
		7: {ID: 7, SubscriptionStatus: &active},
	}}
	svc := newTestService(t, &fakeGateway{}, users)

	_, err := svc.Subscribe(context.Background(), 7, "price_x")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestStripeFailureMapsToPaymentError(t *testing.T) {
	customerID := "cus_1"
	users := &fakeUsers{users: map[uint]*models.User{
		7: {ID: 7, StripeCustomerID: &customerID},
	}}
	gateway := &fakeGateway{
		createSubscriptionFn: func(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error) {
			return nil, &stripe.Error{Msg: "card declined"}
		},
	}
	svc := newTestService(t, gateway, users)

	_, err := svc.Subscribe(context.Background(), 7, "price_x")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePayment, typed.Code())
	assert.Empty(t, users.updates)
}

func TestGetForUserWithoutSubscription(t *testing.T) {
	users := &fakeUsers{users: map[uint]*models.User{7: {ID: 7}}}
	svc := newTestService(t, &fakeGateway{}, users)

	sub, err := svc.GetForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestCancelForUserSyncsStatus(t *testing.T) {
	subID := "sub_9"
	active := enums.SubscriptionStatusActive
	users := &fakeUsers{users: map[uint]*models.User{
		7: {ID: 7, StripeSubscriptionID: &subID, SubscriptionStatus: &active},
	}}
	gateway := &fakeGateway{
		cancelSubscriptionFn: func(ctx context.Context, id string) (*stripe.Subscription, error) {
			assert.Equal(t, subID, id)
			return &stripe.Subscription{ID: id, Status: stripe.SubscriptionStatusCanceled}, nil
		},
	}
	svc := newTestService(t, gateway, users)

	require.NoError(t, svc.CancelForUser(context.Background(), 7))
	require.Len(t, users.updates, 1)
	assert.Equal(t, enums.SubscriptionStatusCanceled, users.updates[0]["subscription_status"])
}

func TestCancelForUnknownUser(t *testing.T) {
	svc := newTestService(t, &fakeGateway{}, &fakeUsers{users: map[uint]*models.User{}})

	err := svc.CancelForUser(context.Background(), 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListProductsWrapsGatewayError(t *testing.T) {
	gateway := &fakeGateway{
		listActivePricesFn: func(ctx context.Context) ([]*stripe.Price, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := newTestService(t, gateway, &fakeUsers{})

	_, err := svc.ListProducts(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePayment, typed.Code())
}
