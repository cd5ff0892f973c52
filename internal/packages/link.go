package packages

import (
	"regexp"
)

// Validation des liens de paquet cadeau (liens de collecte Yuanbao).
// Seuls les liens de claim officiels sont acceptés ; l'identifiant
// red_packet_id extrait sert de clé de déduplication.

var (
	claimURLPattern = regexp.MustCompile(`^https://yb\.tencent\.com/fes/red/claim`)
	giftIDPattern   = regexp.MustCompile(`red_packet_id=([^&]+)`)
)

// ParseGiftURL valide un lien de paquet et en extrait l'identifiant du cadeau.
// Retourne (giftID, true) si le lien est valide.
func ParseGiftURL(url string) (string, bool) {
	if !claimURLPattern.MatchString(url) {
		return "", false
	}
	m := giftIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
