package checkins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatame/tatame-backend/internal/testutil"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB, models.Class) {
	t.Helper()
	conn := testutil.NewSQLite(t, &models.User{}, &models.Gym{}, &models.Class{}, &models.CheckIn{})
	class := models.Class{GymID: 1, InstructorID: 1, CreatedByID: 1, DayOfWeek: enums.DayMonday, StartTime: "18:00", EndTime: "19:00", Modality: "BJJ"}
	require.NoError(t, conn.Create(&class).Error)

	svc, err := NewService(NewRepository(conn), clock.Fixed(time.Date(2026, time.March, 9, 18, 30, 0, 0, time.UTC)))
	require.NoError(t, err)
	return svc, conn, class
}

func TestCreateIsUniquePerUserAndClass(t *testing.T) {
	svc, conn, class := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.Create(ctx, 7, CreateCheckInInput{ClassID: class.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2026-03-09", first.Date)

	nextWeek := "2026-03-16"
	second, created, err := svc.Create(ctx, 7, CreateCheckInInput{ClassID: class.ID, Date: &nextWeek})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.CheckIn{}).Where("user_id = ? AND class_id = ?", 7, class.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateThenDeleteLeavesNoRows(t *testing.T) {
	svc, _, class := newTestService(t)
	ctx := context.Background()

	checkIn, _, err := svc.Create(ctx, 3, CreateCheckInInput{ClassID: class.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, checkIn.ID))

	rows, err := svc.ListByUser(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = svc.Delete(ctx, checkIn.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateRejectsUnknownClassAndBadDate(t *testing.T) {
	svc, _, class := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Create(ctx, 1, CreateCheckInInput{ClassID: class.ID + 100})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	bad := "09/03/2026"
	_, _, err = svc.Create(ctx, 1, CreateCheckInInput{ClassID: class.ID, Date: &bad})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListByClassFiltersDate(t *testing.T) {
	svc, _, class := newTestService(t)
	ctx := context.Background()

	other := "2026-03-02"
	_, _, err := svc.Create(ctx, 1, CreateCheckInInput{ClassID: class.ID})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, 2, CreateCheckInInput{ClassID: class.ID, Date: &other})
	require.NoError(t, err)

	all, err := svc.ListByClass(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListByClass(ctx, class.ID, &other)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.EqualValues(t, 2, filtered[0].UserID)
}
