package service

import (
	"context"
	"testing"
	"time"

	"liftlog/fitness-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newProteinServiceAt returns a service whose clock is pinned to the given
// instant, evaluated in UTC.
func newProteinServiceAt(repo *fakeProteinRepo, at time.Time) *proteinService {
	svc := NewProteinService(repo, time.UTC).(*proteinService)
	svc.now = func() time.Time { return at }
	return svc
}

func TestGetToday_CreatesDefaultRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	rec, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProteinGoal, rec.DailyGoal)
	assert.Equal(t, 0, rec.CurrentIntake)
	assert.Equal(t, "2025-06-01", rec.LastUpdated)
}

func TestGetToday_SameDayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	_, err := svc.UpdateIntake(ctx, userID, 40)
	require.NoError(t, err)

	first, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	second, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.CurrentIntake, second.CurrentIntake)
	assert.Equal(t, 40, second.CurrentIntake)
}

func TestGetToday_ResetsOnDateChange(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	_, err := svc.UpdateIntake(ctx, userID, 120)
	require.NoError(t, err)
	_, err = svc.SetGoal(ctx, userID, 180)
	require.NoError(t, err)

	// Cross midnight. The counter resets; the goal survives.
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 0, 5, 0, 0, time.UTC) }

	rec, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentIntake)
	assert.Equal(t, 180, rec.DailyGoal)
	assert.Equal(t, "2025-06-02", rec.LastUpdated)

	// Reading again on the new day does not reset anything further.
	_, err = svc.UpdateIntake(ctx, userID, 25)
	require.NoError(t, err)
	rec, err = svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 25, rec.CurrentIntake)
}

func TestGetToday_UsesConfiguredTimeZone(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	userID := primitive.NewObjectID()

	// 01:30 UTC on June 2 is still June 1 in New York.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	svc := NewProteinService(repo, ny).(*proteinService)
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 1, 30, 0, 0, time.UTC) }

	rec, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", rec.LastUpdated)
}

func TestUpdateIntake_NeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	_, err := svc.UpdateIntake(ctx, userID, 30)
	require.NoError(t, err)

	rec, err := svc.UpdateIntake(ctx, userID, -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentIntake)
}

func TestUpdateIntake_CapsAtDailyMaximum(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	rec, err := svc.UpdateIntake(ctx, userID, 9999)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxDailyIntake, rec.CurrentIntake)
}

func TestUpdateIntake_AccumulatesWithinDay(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	for _, delta := range []int{30, 25, -10} {
		_, err := svc.UpdateIntake(ctx, userID, delta)
		require.NoError(t, err)
	}
	rec, err := svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 45, rec.CurrentIntake)
}

func TestSetGoal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProteinRepo()
	svc := newProteinServiceAt(repo, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	userID := primitive.NewObjectID()

	_, err := svc.SetGoal(ctx, userID, 0)
	assert.ErrorIs(t, err, ErrInvalidGoal)
	_, err = svc.SetGoal(ctx, userID, 501)
	assert.ErrorIs(t, err, ErrInvalidGoal)
	_, err = svc.SetGoal(ctx, userID, -5)
	assert.ErrorIs(t, err, ErrInvalidGoal)

	rec, err := svc.SetGoal(ctx, userID, 150)
	require.NoError(t, err)
	assert.Equal(t, 150, rec.DailyGoal)

	rec, err = svc.GetToday(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 150, rec.DailyGoal)
}
