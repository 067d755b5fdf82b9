package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/stripe/stripe-go/v84"
	"github.com/tatame/tatame-backend/internal/subscriptions"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/email"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

type userStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type ServiceParams struct {
	Users  userStore
	Mailer Mailer
	Logger *logger.Logger
}

// Service applies Stripe subscription lifecycle events to users.
type Service struct {
	users  userStore
	mailer Mailer
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user store required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		users:  params.Users,
		mailer: params.Mailer,
		logg:   params.Logger,
	}, nil
}

// HandleEvent dispatches by event type. Unknown types are accepted and ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
	default:
		s.logg.Debug(s.logg.WithField(ctx, "event_type", string(event.Type)), "stripe.event_ignored")
		return nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
	}

	user, err := s.resolveUser(ctx, &sub)
	if err != nil {
		return err
	}
	if user == nil {
		logCtx := s.logg.WithField(ctx, "subscription_id", sub.ID)
		s.logg.Warn(logCtx, "stripe.subscription_user_missing")
		return nil
	}

	status, err := subscriptions.MapStatus(sub.Status)
	if err != nil {
		return err
	}
	if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
		status = enums.SubscriptionStatusCanceled
	}

	updates := map[string]any{
		"stripe_subscription_id": sub.ID,
		"subscription_status":    status,
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		updates["stripe_customer_id"] = sub.Customer.ID
	}
	if err := s.users.Update(ctx, user.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store subscription state")
	}

	if event.Type == stripe.EventTypeCustomerSubscriptionCreated {
		s.sendWelcome(ctx, user)
	}
	return nil
}

func (s *Service) resolveUser(ctx context.Context, sub *stripe.Subscription) (*models.User, error) {
	if raw := sub.Metadata["user_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id metadata")
		}
		return absentAsNil(s.users.FindByID(ctx, uint(id)))
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		return absentAsNil(s.users.FindByStripeCustomerID(ctx, sub.Customer.ID))
	}
	return nil, nil
}

func (s *Service) sendWelcome(ctx context.Context, user *models.User) {
	if s.mailer == nil || user.Email == "" {
		return
	}
	if err := s.mailer.Send(ctx, email.WelcomeMessage(user.Email, user.FirstName)); err != nil {
		logCtx := s.logg.WithField(ctx, "user_id", user.ID)
		s.logg.Error(logCtx, "stripe.welcome_email_failed", err)
	}
}

func absentAsNil(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.DeletedAt.Valid {
		return nil, nil
	}
	return user, nil
}
