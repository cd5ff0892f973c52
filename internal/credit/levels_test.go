package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{-50, LevelBanned},
		{0, LevelBanned},
		{19, LevelBanned},
		{20, LevelRestricted},
		{39, LevelRestricted},
		{40, LevelWarning},
		{59, LevelWarning},
		{60, LevelNormal},
		{74, LevelNormal},
		{75, LevelGood},
		{89, LevelGood},
		{90, LevelExcellent},
		{100, LevelExcellent},
		{250, LevelExcellent},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevelForScore(c.score), "score %d", c.score)
	}
}

func TestQuotaForScore(t *testing.T) {
	assert.Equal(t, 3, QuotaForScore(95))
	assert.Equal(t, 2, QuotaForScore(80))
	assert.Equal(t, 2, QuotaForScore(60))
	assert.Equal(t, 1, QuotaForScore(45))
	assert.Equal(t, 0, QuotaForScore(25))
	assert.Equal(t, 0, QuotaForScore(10))
	assert.Equal(t, 0, QuotaForScore(-5))
}

func TestAutoAudit(t *testing.T) {
	assert.True(t, AutoAudit(LevelExcellent))
	assert.True(t, AutoAudit(LevelGood))
	assert.False(t, AutoAudit(LevelNormal))
	assert.False(t, AutoAudit(LevelWarning))
	assert.False(t, AutoAudit(LevelRestricted))
	assert.False(t, AutoAudit(LevelBanned))
}

func TestWeightForLevel(t *testing.T) {
	assert.Equal(t, 2.0, WeightForLevel(LevelExcellent))
	assert.Equal(t, 1.5, WeightForLevel(LevelGood))
	assert.Equal(t, 1.0, WeightForLevel(LevelNormal))
	assert.Equal(t, 0.5, WeightForLevel(LevelWarning))
	assert.Equal(t, 0.0, WeightForLevel(LevelRestricted))
	assert.Equal(t, 0.0, WeightForLevel(LevelBanned))
	// niveau inconnu : poids neutre
	assert.Equal(t, 1.0, WeightForLevel(Level("")))
}

func TestRules(t *testing.T) {
	cases := []struct {
		code  string
		delta int
	}{
		{ReasonDailyHelp, +1},
		{ReasonStreak7, +5},
		{ReasonValidReport, +3},
		{ReasonContractFulfill, +2},
		{ReasonRecovery30D, +5},
		{ReasonFakeLink, -20},
		{ReasonNoReward, -10},
		{ReasonSpam, -30},
		{ReasonContractBreach, -5},
		{ReasonFalseReport, -2},
		{ReasonCheating, -50},
	}
	for _, c := range cases {
		rule, err := RuleFor(c.code)
		assert.NoError(t, err, c.code)
		assert.Equal(t, c.delta, rule.Delta, c.code)
	}

	_, err := RuleFor("NOPE")
	assert.Error(t, err)
	// INIT est hors grille : jamais applicable via les règles
	_, err = RuleFor(ReasonInit)
	assert.Error(t, err)
}
