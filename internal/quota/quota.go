// Package quota gère les compteurs journaliers et la série de connexions.
//
// Le rollover est un read-modify-write sur l'agrégat utilisateur : il est
// sérialisé par un UPDATE conditionné sur la date stockée. Deux sessions qui
// traversent minuit en même temps ne peuvent pas doubler la série.
package quota

import (
	"context"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// StreakBonusEvery série de jours donnant droit au bonus STREAK_7
const StreakBonusEvery = 7

type Tracker struct {
	Users  store.UserStore
	Credit *credit.Service

	// now remplaçable dans les tests
	now func() time.Time
}

func NewTracker(users store.UserStore, creditSvc *credit.Service) *Tracker {
	return &Tracker{Users: users, Credit: creditSvc, now: time.Now}
}

// EnsureCurrent ramène les stats journalières de l'utilisateur sur la date du
// jour si nécessaire, et retourne le profil à jour.
//
// Si la date stockée est la veille, la série continue (+1), sinon elle repart
// à 1. Le quota est recalculé depuis le niveau de crédit courant. Quand la
// série atteint un multiple de 7, le bonus STREAK_7 est crédité.
func (t *Tracker) EnsureCurrent(ctx context.Context, userID string) (*model.UserProfile, error) {
	user, err := t.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	today := utils.DayString(now)
	if user.DailyStats.Date == today {
		return user, nil
	}

	streak := 1
	if user.DailyStats.Date == utils.YesterdayOf(now) {
		streak = user.TotalStats.StreakDays + 1
	}

	daily := model.DailyStats{
		Date:      today,
		Helped:    0,
		Published: 0,
		Quota:     credit.QuotaForLevel(credit.Level(user.CreditLevel)),
	}

	ok, err := t.Users.RolloverDaily(ctx, userID, user.DailyStats.Date, daily, streak)
	if err != nil {
		return nil, err
	}
	if ok && streak > 1 && streak%StreakBonusEvery == 0 {
		// Bonus de série : échec non bloquant, le login doit passer
		if _, err := t.Credit.Apply(ctx, userID, credit.ReasonStreak7, "streak", today, credit.OperatorSystem); err != nil {
			utils.LogError("bonus STREAK_7 pour %s non appliqué: %v", userID, err)
		}
	}
	// ok == false : une session concurrente a déjà fait le rollover, on relit

	return t.Users.GetUser(ctx, userID)
}
