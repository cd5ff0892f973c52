// Package exposure calcule le score de visibilité d'un paquet.
//
// Le score est calculé une seule fois à la publication puis persisté : il
// contient un terme aléatoire, le recalculer à chaque affichage ferait bouger
// le tri. Il sert uniquement de clé de tri descendante.
package exposure

import (
	"math"
	"math/rand"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
)

const (
	baseScore       = 50.0
	creditFactor    = 20.0
	freshnessFactor = 30.0
	urgencyFactor   = 15.0
	randomFactor    = 5.0
	freshnessWindow = 24 * time.Hour
)

// Score calcule le score d'exposition d'un paquet à la publication.
// Formule héritée du produit : le terme d'urgence croît avec les places
// restantes (remaining/maxHelp), conservé tel quel.
func Score(createdAt time.Time, helpCount, maxHelp int, level credit.Level, now time.Time) int {
	return score(createdAt, helpCount, maxHelp, level, now, rand.Float64()*randomFactor)
}

func score(createdAt time.Time, helpCount, maxHelp int, level credit.Level, now time.Time, random float64) int {
	weight := credit.WeightForLevel(level)

	age := now.Sub(createdAt)
	freshness := math.Max(0, 1-age.Seconds()/freshnessWindow.Seconds()) * freshnessFactor

	urgency := 0.0
	if maxHelp > 0 {
		remaining := float64(maxHelp - helpCount)
		urgency = remaining / float64(maxHelp) * urgencyFactor
	}

	return int(math.Round(baseScore + weight*creditFactor + freshness + urgency + random))
}
