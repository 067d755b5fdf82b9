package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	"github.com/tatame/tatame-backend/pkg/push"
)

var errUnsupportedChannel = errors.New("unsupported channel")

// dispatch delivers the notification and records the outcome on the row.
func (s *service) dispatch(ctx context.Context, notification *models.Notification) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification_id": notification.ID,
		"channel":         string(notification.Channel),
	})

	var err error
	switch notification.Channel {
	case enums.NotificationChannelPush:
		err = s.sendPush(ctx, notification)
	default:
		err = fmt.Errorf("%w: %s", errUnsupportedChannel, notification.Channel)
	}

	status := enums.NotificationStatusSent
	var sentAt *time.Time
	if err != nil {
		status = enums.NotificationStatusFailed
		s.logg.Error(ctx, "notifications.dispatch_failed", err)
	} else {
		now := s.clock.Now()
		sentAt = &now
	}
	s.metrics.IncDispatch(string(notification.Channel), string(status))

	// the outcome is recorded even when the caller went away mid-delivery
	if err := s.repo.UpdateStatus(context.WithoutCancel(ctx), notification.ID, status, sentAt); err != nil {
		s.logg.Error(ctx, "notifications.status_update_failed", err)
		return
	}
	notification.Status = status
	notification.SentAt = sentAt
}

// sendPush builds one message per recipient with a registered device token.
func (s *service) sendPush(ctx context.Context, notification *models.Notification) error {
	ids := make([]uint, 0, len(notification.Recipients))
	for _, raw := range notification.Recipients {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	recipients, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	messages := make([]push.Message, 0, len(recipients))
	for _, user := range recipients {
		if user.PushToken == nil || !push.IsDeviceToken(*user.PushToken) {
			continue
		}
		messages = append(messages, push.Message{
			To:    *user.PushToken,
			Title: notification.Title,
			Body:  notification.Content,
			Sound: "default",
			Data:  map[string]string{"notificationId": strconv.FormatUint(uint64(notification.ID), 10)},
		})
	}
	s.metrics.AddMessages("skipped", len(notification.Recipients)-len(messages))
	if len(messages) == 0 {
		return nil
	}

	tickets, err := s.pusher.Send(ctx, messages)
	delivered := 0
	for _, ticket := range tickets {
		if ticket.OK() {
			delivered++
		}
	}
	s.metrics.AddMessages("sent", delivered)
	s.metrics.AddMessages("failed", len(messages)-delivered)
	return err
}
