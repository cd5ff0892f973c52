package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store/memory"
	"github.com/duckytan/DotCircle/internal/utils"
)

func newTracker(t *testing.T, now time.Time) (*Tracker, *memory.Store, *model.UserProfile) {
	t.Helper()
	db := memory.New()
	creditSvc := credit.NewService(db)
	tracker := NewTracker(db, creditSvc)
	tracker.now = func() time.Time { return now }

	ctx := context.Background()
	u := &model.UserProfile{Nickname: "测试用户"}
	require.NoError(t, db.CreateUser(ctx, u))
	_, err := creditSvc.Bootstrap(ctx, u.ID)
	require.NoError(t, err)

	fresh, err := db.GetUser(ctx, u.ID)
	require.NoError(t, err)
	return tracker, db, fresh
}

func setDaily(t *testing.T, db *memory.Store, u *model.UserProfile, daily model.DailyStats, streak int) {
	t.Helper()
	ok, err := db.RolloverDaily(context.Background(), u.ID, u.DailyStats.Date, daily, streak)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEnsureCurrentFirstLogin(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	tracker, _, u := newTracker(t, now)

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, utils.DayString(now), fresh.DailyStats.Date)
	require.Equal(t, 0, fresh.DailyStats.Helped)
	require.Equal(t, 0, fresh.DailyStats.Published)
	require.Equal(t, 2, fresh.DailyStats.Quota) // NORMAL
	require.Equal(t, 1, fresh.TotalStats.StreakDays)
}

func TestEnsureCurrentSameDayIsNoop(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	setDaily(t, db, u, model.DailyStats{Date: utils.DayString(now), Helped: 2, Published: 1, Quota: 2}, 3)

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.DailyStats.Helped)
	require.Equal(t, 1, fresh.DailyStats.Published)
	require.Equal(t, 3, fresh.TotalStats.StreakDays)
}

func TestEnsureCurrentContinuesStreak(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 5, 0, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	setDaily(t, db, u, model.DailyStats{Date: utils.YesterdayOf(now), Helped: 2, Published: 2, Quota: 2}, 3)

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, utils.DayString(now), fresh.DailyStats.Date)
	require.Equal(t, 0, fresh.DailyStats.Helped)
	require.Equal(t, 4, fresh.TotalStats.StreakDays)
}

func TestEnsureCurrentResetsStreakAfterGap(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	// dernière activité il y a trois jours
	setDaily(t, db, u, model.DailyStats{Date: utils.DayString(now.AddDate(0, 0, -3)), Helped: 1, Quota: 2}, 12)

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.TotalStats.StreakDays)
}

func TestEnsureCurrentStreakBonus(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	setDaily(t, db, u, model.DailyStats{Date: utils.YesterdayOf(now), Quota: 2}, 6)

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 7, fresh.TotalStats.StreakDays)
	require.Equal(t, credit.DefaultScore+5, fresh.CreditScore)

	history, err := db.History(context.Background(), u.ID, 1, 1)
	require.NoError(t, err)
	require.Equal(t, credit.ReasonStreak7, history[0].ReasonCode)
}

func TestEnsureCurrentQuotaFollowsLevel(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	// passer l'utilisateur en EXCELLENT avant la bascule
	for i := 0; i < 7; i++ {
		_, err := db.AppendEntry(context.Background(), u.ID, 5, credit.ReasonRecovery30D, "test", "", "", "system")
		require.NoError(t, err)
	}

	fresh, err := tracker.EnsureCurrent(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 95, fresh.CreditScore)
	require.Equal(t, 3, fresh.DailyStats.Quota)
}

func TestEnsureCurrentConcurrentRollover(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 30, 0, time.Local)
	tracker, db, u := newTracker(t, now)

	setDaily(t, db, u, model.DailyStats{Date: utils.YesterdayOf(now), Helped: 2, Quota: 2}, 6)

	// plusieurs sessions traversent minuit en même temps : une seule bascule,
	// un seul bonus de série
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.EnsureCurrent(context.Background(), u.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	fresh, err := db.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 7, fresh.TotalStats.StreakDays)
	require.Equal(t, credit.DefaultScore+5, fresh.CreditScore)
}
