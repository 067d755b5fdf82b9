package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

const metadataUserID = "user_id"

type userStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
}

// Service defines the subscription lifecycle surface.
type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	EnsureCustomer(ctx context.Context, userID uint) (string, error)
	Subscribe(ctx context.Context, userID uint, priceID string) (*Subscription, error)
	GetForUser(ctx context.Context, userID uint) (*Subscription, error)
	CancelForUser(ctx context.Context, userID uint) error
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Users          userStore
	Stripe         StripeGateway
	DefaultPriceID string
	Logger         *logger.Logger
}

type service struct {
	users   userStore
	stripe  StripeGateway
	priceID string
	logg    *logger.Logger
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:   params.Users,
		stripe:  params.Stripe,
		priceID: strings.TrimSpace(params.DefaultPriceID),
		logg:    params.Logger,
	}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	prices, err := s.stripe.ListActivePrices(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "list stripe prices")
	}
	return ProductsFromPrices(prices), nil
}

// EnsureCustomer returns the user's Stripe customer id, creating the customer on first use.
func (s *service) EnsureCustomer(ctx context.Context, userID uint) (string, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.ensureCustomer(ctx, user)
}

func (s *service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerCreateParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.FullName()),
	}
	params.AddMetadata(metadataUserID, strconv.FormatUint(uint64(user.ID), 10))

	customer, err := s.stripe.CreateCustomer(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodePayment, err, "create stripe customer")
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"stripe_customer_id": customer.ID}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store stripe customer")
	}
	user.StripeCustomerID = &customer.ID
	return customer.ID, nil
}

// Subscribe starts a subscription in the incomplete state; the client confirms
// payment with the returned client secret.
func (s *service) Subscribe(ctx context.Context, userID uint, priceID string) (*Subscription, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		priceID = s.priceID
	}
	if priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_id is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus != nil && IsActiveStatus(*user.SubscriptionStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription already active")
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionCreatePaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	params.AddMetadata(metadataUserID, strconv.FormatUint(uint64(user.ID), 10))
	params.AddExpand("latest_invoice.confirmation_secret")

	created, err := s.stripe.CreateSubscription(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "create stripe subscription")
	}
	out, err := fromStripe(created)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, user.ID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForUser returns nil when the user never subscribed.
func (s *service) GetForUser(ctx context.Context, userID uint) (*Subscription, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return nil, nil
	}

	remote, err := s.stripe.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "fetch stripe subscription")
	}
	out, err := fromStripe(remote)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus == nil || *user.SubscriptionStatus != out.Status {
		if err := s.store(ctx, user.ID, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *service) CancelForUser(ctx context.Context, userID uint) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	if user.SubscriptionStatus != nil && user.SubscriptionStatus.IsTerminal() {
		return nil
	}

	canceled, err := s.stripe.CancelSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePayment, err, "cancel stripe subscription")
	}
	out, err := fromStripe(canceled)
	if err != nil {
		return err
	}
	return s.store(ctx, user.ID, out)
}

func (s *service) store(ctx context.Context, userID uint, sub *Subscription) error {
	err := s.users.Update(ctx, userID, map[string]any{
		"stripe_subscription_id": sub.ID,
		"subscription_status":    sub.Status,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store subscription")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": userID, "subscription_status": sub.Status})
	s.logg.Info(logCtx, "subscriptions.synced")
	return nil
}

func (s *service) loadUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.DeletedAt.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
