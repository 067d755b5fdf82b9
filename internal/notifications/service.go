package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/metrics"
	"github.com/tatame/tatame-backend/pkg/push"
	"gorm.io/gorm"
)

type userReader interface {
	FindActiveByID(ctx context.Context, id uint) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// Pusher delivers push messages to a gateway.
type Pusher interface {
	Send(ctx context.Context, messages []push.Message) ([]push.Ticket, error)
}

// CreateNotificationInput captures a notification to persist and dispatch.
type CreateNotificationInput struct {
	Title      string
	Content    string
	Channel    enums.NotificationChannel
	Recipients []uint
}

// Service exposes notification operations.
type Service interface {
	Create(ctx context.Context, senderID *uint, input CreateNotificationInput) (*models.Notification, error)
	Resend(ctx context.Context, id uint) error
	ListUnread(ctx context.Context, userID uint) ([]models.Notification, error)
	ListSent(ctx context.Context, senderID uint) ([]models.Notification, error)
	View(ctx context.Context, id, userID uint) error
	NotifyUser(ctx context.Context, senderID *uint, recipientID uint, title, content string) error
}

// ServiceParams groups the collaborators of the notification service.
type ServiceParams struct {
	Repo    Repository
	Users   userReader
	Pusher  Pusher
	Clock   clock.Clock
	Logger  *logger.Logger
	Metrics *metrics.NotificationMetrics
}

type service struct {
	repo    Repository
	users   userReader
	pusher  Pusher
	clock   clock.Clock
	logg    *logger.Logger
	metrics *metrics.NotificationMetrics
	goAsync func(fn func())
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users reader required")
	}
	if params.Pusher == nil {
		return nil, fmt.Errorf("pusher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		users:   params.Users,
		pusher:  params.Pusher,
		clock:   params.Clock,
		logg:    params.Logger,
		metrics: params.Metrics,
		goAsync: func(fn func()) { go fn() },
	}, nil
}

// Create persists the notification as pending and dispatches it right away.
// Delivery failures only show up in the stored status.
func (s *service) Create(ctx context.Context, senderID *uint, input CreateNotificationInput) (*models.Notification, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid channel")
	}
	if len(input.Recipients) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one recipient is required")
	}

	recipients := make(pq.StringArray, 0, len(input.Recipients))
	seen := make(map[uint]struct{}, len(input.Recipients))
	for _, id := range input.Recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, strconv.FormatUint(uint64(id), 10))
	}

	notification := &models.Notification{
		Title:      title,
		Content:    content,
		Channel:    input.Channel,
		SenderID:   senderID,
		Recipients: recipients,
		Status:     enums.NotificationStatusPending,
		ViewedBy:   pq.StringArray{},
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	if notification.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification creation failed")
	}

	s.dispatch(ctx, notification)
	return notification, nil
}

// Resend re-dispatches in the background; only a missing id is reported.
func (s *service) Resend(ctx context.Context, id uint) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}

	bg := context.WithoutCancel(ctx)
	s.goAsync(func() {
		s.dispatch(bg, notification)
	})
	return nil
}

// ListUnread is empty for unknown or deleted users and for members still
// awaiting approval.
func (s *service) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Notification{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !roles.IsHigherRole(user.Role) && !user.IsApproved() {
		return []models.Notification{}, nil
	}

	out, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unread notifications")
	}
	return out, nil
}

func (s *service) ListSent(ctx context.Context, senderID uint) ([]models.Notification, error) {
	out, err := s.repo.ListSent(ctx, senderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sent notifications")
	}
	return out, nil
}

// View is idempotent and ignores unknown notifications.
func (s *service) View(ctx context.Context, id, userID uint) error {
	if _, err := s.repo.MarkViewed(ctx, id, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification viewed")
	}
	return nil
}

func (s *service) NotifyUser(ctx context.Context, senderID *uint, recipientID uint, title, content string) error {
	_, err := s.Create(ctx, senderID, CreateNotificationInput{
		Title:      title,
		Content:    content,
		Channel:    enums.NotificationChannelPush,
		Recipients: []uint{recipientID},
	})
	return err
}
