package utils

import (
	"time"
)

// TodayString date du jour en heure serveur, format 2006-01-02.
// Toutes les comparaisons de date journalière passent par ici : la convention
// est l'heure locale du serveur, pas UTC.
func TodayString() string {
	return time.Now().Format("2006-01-02")
}

// DayString formate une date en clé journalière
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}

// YesterdayOf clé journalière de la veille d'une date donnée
func YesterdayOf(t time.Time) string {
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

// MaskNickname masque un pseudo pour les classements publics :
// premier et dernier caractère conservés, le reste remplacé par des étoiles
func MaskNickname(nickname string) string {
	runes := []rune(nickname)
	if len(runes) == 0 {
		return "用**"
	}
	if len(runes) <= 2 {
		return string(runes[0]) + "**"
	}
	masked := make([]rune, 0, len(runes))
	masked = append(masked, runes[0])
	for i := 1; i < len(runes)-1; i++ {
		masked = append(masked, '*')
	}
	masked = append(masked, runes[len(runes)-1])
	return string(masked)
}
