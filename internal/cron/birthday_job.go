package cron

import (
	"context"
	"fmt"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/logger"
	"go.uber.org/multierr"
)

const BirthdayJobName = "birthday-greetings"

type birthdayLister interface {
	ListBirthdays(ctx context.Context, gymID *uint, monthDay string) ([]models.User, error)
}

type birthdayNotifier interface {
	NotifyUser(ctx context.Context, senderID *uint, recipientID uint, title, content string) error
}

type BirthdayJobParams struct {
	Logger   *logger.Logger
	Users    birthdayLister
	Notifier birthdayNotifier
	Clock    clock.Clock
}

// NewBirthdayJob greets every user whose birthday is today in the app time zone.
func NewBirthdayJob(params BirthdayJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lister required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &birthdayJob{
		logg:     params.Logger,
		users:    params.Users,
		notifier: params.Notifier,
		clock:    params.Clock,
	}, nil
}

type birthdayJob struct {
	logg     *logger.Logger
	users    birthdayLister
	notifier birthdayNotifier
	clock    clock.Clock
}

func (j *birthdayJob) Name() string { return BirthdayJobName }

func (j *birthdayJob) Run(ctx context.Context) error {
	monthDay := j.clock.MonthDay()
	users, err := j.users.ListBirthdays(ctx, nil, monthDay)
	if err != nil {
		return fmt.Errorf("list birthdays: %w", err)
	}

	var errs error
	sent := 0
	for _, user := range users {
		content := fmt.Sprintf("Happy birthday, %s! Everyone on the mats wishes you a great year.", user.FirstName)
		if err := j.notifier.NotifyUser(ctx, nil, user.ID, "Happy birthday!", content); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %d: %w", user.ID, err))
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"month_day":  monthDay,
		"candidates": len(users),
		"greeted":    sent,
	})
	j.logg.Info(logCtx, "birthday greetings complete")
	return errs
}
