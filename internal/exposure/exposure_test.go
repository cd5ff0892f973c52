package exposure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/duckytan/DotCircle/internal/credit"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestScoreFreshPackage(t *testing.T) {
	// paquet neuf, niveau NORMAL, toutes les places libres, sans aléa :
	// 50 + 1.0*20 + 30 + 15 = 115
	got := score(base, 0, 10, credit.LevelNormal, base, 0)
	assert.Equal(t, 115, got)
}

func TestScoreCreditWeight(t *testing.T) {
	normal := score(base, 0, 10, credit.LevelNormal, base, 0)
	good := score(base, 0, 10, credit.LevelGood, base, 0)
	excellent := score(base, 0, 10, credit.LevelExcellent, base, 0)
	banned := score(base, 0, 10, credit.LevelBanned, base, 0)

	assert.Equal(t, 10, good-normal)      // (1.5-1.0)*20
	assert.Equal(t, 20, excellent-normal) // (2.0-1.0)*20
	assert.Equal(t, -20, banned-normal)   // poids nul
}

func TestScoreFreshnessDecay(t *testing.T) {
	fresh := score(base, 0, 10, credit.LevelNormal, base, 0)
	halfDay := score(base, 0, 10, credit.LevelNormal, base.Add(12*time.Hour), 0)
	old := score(base, 0, 10, credit.LevelNormal, base.Add(24*time.Hour), 0)
	ancient := score(base, 0, 10, credit.LevelNormal, base.Add(72*time.Hour), 0)

	assert.Equal(t, 15, fresh-halfDay)
	assert.Equal(t, 30, fresh-old)
	// la fraîcheur ne devient jamais négative
	assert.Equal(t, old, ancient)
}

func TestScoreUrgencyGrowsWithRemaining(t *testing.T) {
	empty := score(base, 0, 10, credit.LevelNormal, base, 0)
	half := score(base, 5, 10, credit.LevelNormal, base, 0)
	almostFull := score(base, 9, 10, credit.LevelNormal, base, 0)

	// le terme suit remaining/maxHelp : il décroît quand le paquet se remplit
	assert.Greater(t, empty, half)
	assert.Greater(t, half, almostFull)
	assert.Equal(t, 15, empty-score(base, 10, 10, credit.LevelNormal, base, 0))
}

func TestScoreZeroMaxHelp(t *testing.T) {
	// capacité nulle : pas de terme d'urgence, pas de division par zéro
	got := score(base, 0, 0, credit.LevelNormal, base, 0)
	assert.Equal(t, 100, got)
}

func TestScoreRandomBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := Score(base, 0, 10, credit.LevelNormal, base)
		assert.GreaterOrEqual(t, got, 115)
		assert.LessOrEqual(t, got, 120)
	}
}
