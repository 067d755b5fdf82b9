package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
)

type fakeBirthdays struct {
	gotMonthDay string
	users       []models.User
}

func (f *fakeBirthdays) ListBirthdays(_ context.Context, gymID *uint, monthDay string) ([]models.User, error) {
	if gymID != nil {
		return nil, errors.New("cron lists every gym")
	}
	f.gotMonthDay = monthDay
	return f.users, nil
}

type fakeNotifier struct {
	recipients []uint
	failFor    uint
}

func (f *fakeNotifier) NotifyUser(_ context.Context, senderID *uint, recipientID uint, title, content string) error {
	if recipientID == f.failFor {
		return errors.New("push gateway down")
	}
	f.recipients = append(f.recipients, recipientID)
	return nil
}

type fakePurger struct {
	deleted int
	err     error
}

func (f fakePurger) PurgeExpired(context.Context) (int, error) { return f.deleted, f.err }

func TestBirthdayJobGreetsTodaysBirthdays(t *testing.T) {
	users := &fakeBirthdays{users: []models.User{{ID: 1, FirstName: "Ana"}, {ID: 2, FirstName: "Bia"}, {ID: 3, FirstName: "Caio"}}}
	notifier := &fakeNotifier{failFor: 2}
	job, err := NewBirthdayJob(BirthdayJobParams{
		Logger:   newTestLogger(),
		Users:    users,
		Notifier: notifier,
		Clock:    clock.Fixed(time.Date(2026, time.July, 4, 9, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated failure for user 2")
	}
	if users.gotMonthDay != "07-04" {
		t.Fatalf("expected month-day 07-04, got %q", users.gotMonthDay)
	}
	if len(notifier.recipients) != 2 || notifier.recipients[0] != 1 || notifier.recipients[1] != 3 {
		t.Fatalf("unexpected recipients %v", notifier.recipients)
	}
}

func TestAssetCleanupJob(t *testing.T) {
	job, err := NewAssetCleanupJob(AssetCleanupJobParams{Logger: newTestLogger(), Assets: fakePurger{deleted: 3}})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	failing, _ := NewAssetCleanupJob(AssetCleanupJobParams{Logger: newTestLogger(), Assets: fakePurger{err: errors.New("db down")}})
	if err := failing.Run(context.Background()); err == nil {
		t.Fatal("expected purge error")
	}
}
