package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/email"
	"github.com/tatame/tatame-backend/pkg/enums"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

type stubUsers struct {
	byID       map[uint]*models.User
	byCustomer map[string]*models.User
	updates    map[uint]map[string]any
}

func (s *stubUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	if user, ok := s.byCustomer[customerID]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) Update(ctx context.Context, id uint, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[uint]map[string]any{}
	}
	s.updates[id] = updates
	return nil
}

type stubMailer struct {
	sent []email.Message
	err  error
}

func (m *stubMailer) Send(ctx context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func newTestService(t *testing.T, users *stubUsers, mailer Mailer) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:  users,
		Mailer: mailer,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, sub *stripe.Subscription) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	return &stripe.Event{ID: "evt_1", Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestSubscriptionCreatedStoresStateAndSendsWelcome(t *testing.T) {
	users := &stubUsers{byID: map[uint]*models.User{
		5: {ID: 5, FirstName: "Royce", Email: "royce@example.com"},
	}}
	mailer := &stubMailer{}
	svc := newTestService(t, users, mailer)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionCreated, &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_1"},
		Metadata: map[string]string{"user_id": "5"},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.Contains(t, users.updates, uint(5))
	assert.Equal(t, enums.SubscriptionStatusActive, users.updates[5]["subscription_status"])
	assert.Equal(t, "cus_1", users.updates[5]["stripe_customer_id"])
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "royce@example.com", mailer.sent[0].To)
}

func TestSubscriptionDeletedMarksCanceledByCustomer(t *testing.T) {
	users := &stubUsers{byCustomer: map[string]*models.User{
		"cus_9": {ID: 9, Email: "kyra@example.com"},
	}}
	mailer := &stubMailer{}
	svc := newTestService(t, users, mailer)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, &stripe.Subscription{
		ID:       "sub_9",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_9"},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Equal(t, enums.SubscriptionStatusCanceled, users.updates[9]["subscription_status"])
	assert.Empty(t, mailer.sent)
}

func TestWelcomeEmailFailureIsSwallowed(t *testing.T) {
	users := &stubUsers{byID: map[uint]*models.User{5: {ID: 5, Email: "x@y.z"}}}
	svc := newTestService(t, users, &stubMailer{err: errors.New("sendgrid down")})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionCreated, &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusIncomplete,
		Metadata: map[string]string{"user_id": "5"},
	})
	assert.NoError(t, svc.HandleEvent(context.Background(), event))
}

func TestUnknownEventIgnored(t *testing.T) {
	users := &stubUsers{}
	svc := newTestService(t, users, nil)

	event := &stripe.Event{Type: stripe.EventTypeInvoicePaid, Data: &stripe.EventData{Raw: []byte(`{}`)}}
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, users.updates)
}

func TestUnknownUserIsAccepted(t *testing.T) {
	users := &stubUsers{}
	svc := newTestService(t, users, nil)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, &stripe.Subscription{
		ID:       "sub_x",
		Status:   stripe.SubscriptionStatusPastDue,
		Metadata: map[string]string{"user_id": "404"},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, users.updates)
}
