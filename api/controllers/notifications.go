package controllers

import (
	"net/http"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/notifications"
	"github.com/tatame/tatame-backend/pkg/enums"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createNotificationRequest struct {
	Title      string `json:"title" validate:"required,max=120"`
	Content    string `json:"content" validate:"required,max=2000"`
	Channel    string `json:"channel" validate:"omitempty,channel"`
	Recipients []uint `json:"recipients" validate:"required,min=1,dive,gt=0"`
}

// CreateNotification stores a notification from the caller and dispatches it.
// Delivery failures are reflected in the returned status, not as an error.
func CreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		channel := enums.NotificationChannel(body.Channel)
		if channel == "" {
			channel = enums.NotificationChannelPush
		}

		sender := actor.UserID
		notification, err := svc.Create(r.Context(), &sender, notifications.CreateNotificationInput{
			Title:      validators.SanitizeString(body.Title, 120),
			Content:    validators.SanitizeString(body.Content, 2000),
			Channel:    channel,
			Recipients: body.Recipients,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, notification)
	}
}

func ResendNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Resend(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "notification resend scheduled")
	}
}

// ListUnreadNotifications returns what the caller has not viewed yet.
func ListUnreadNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUnread(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, list)
	}
}

func ListSentNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListSent(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, list)
	}
}

// ViewNotification marks the notification as viewed by the caller.
func ViewNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("notifications"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.View(r.Context(), id, actor.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "notification viewed")
	}
}
