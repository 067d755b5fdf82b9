//go:build db

package notifications

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatame/tatame-backend/internal/testutil"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
)

func pushTo(sender uint, recipients ...string) *models.Notification {
	return &models.Notification{
		Title:      "Graduação",
		Content:    "Sábado às 10h",
		Channel:    enums.NotificationChannelPush,
		SenderID:   &sender,
		Recipients: pq.StringArray(recipients),
		Status:     enums.NotificationStatusPending,
		ViewedBy:   pq.StringArray{},
	}
}

func TestRepositoryUnreadAndViewFlow(t *testing.T) {
	repo := NewRepository(testutil.NewPostgresTx(t))
	ctx := context.Background()

	addressed := pushTo(900001, "900002", "900003")
	own := pushTo(900002, "900002")
	for _, n := range []*models.Notification{addressed, own} {
		require.NoError(t, repo.Create(ctx, n))
	}

	unread, err := repo.ListUnread(ctx, 900002)
	require.NoError(t, err)
	require.Len(t, unread, 1, "own notifications are not unread")
	assert.Equal(t, addressed.ID, unread[0].ID)

	changed, err := repo.MarkViewed(ctx, addressed.ID, 900002)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkViewed(ctx, addressed.ID, 900002)
	require.NoError(t, err)
	assert.False(t, changed, "second view is a no-op")

	stored, err := repo.FindByID(ctx, addressed.ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"900002"}, stored.ViewedBy)

	unread, err = repo.ListUnread(ctx, 900002)
	require.NoError(t, err)
	assert.Empty(t, unread)

	unread, err = repo.ListUnread(ctx, 900003)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}
