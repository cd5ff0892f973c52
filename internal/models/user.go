package model

import (
	"time"
)

// DateFields contient les champs d'audit standard pour toutes les entités
type DateFields struct {
	CreatedBy *string   `json:"createdBy,omitempty"`
	UpdatedBy *string   `json:"updatedBy,omitempty"`
	DeletedAt time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string   `json:"deletedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// DailyStats compteurs journaliers, remis à zéro au premier bootstrap du jour
type DailyStats struct {
	Date      string `json:"date"` // format 2006-01-02, heure serveur
	Helped    int    `json:"helped"`
	Published int    `json:"published"`
	Quota     int    `json:"quota"`
}

// TotalStats compteurs cumulés depuis l'inscription
type TotalStats struct {
	TotalHelped    int       `json:"totalHelped"`
	TotalPublished int       `json:"totalPublished"`
	StreakDays     int       `json:"streakDays"`
	LastActive     time.Time `json:"lastActive"`
}

// UserSettings préférences utilisateur
type UserSettings struct {
	PublicLeaderboard bool `json:"publicLeaderboard"`
	EnableContract    bool `json:"enableContract"`
	AllowNotification bool `json:"allowNotification"`
}

type UserProfile struct {
	ID           string       `json:"id,omitempty"`
	ExternalID   string       `json:"externalId,omitempty"` // identifiant fourni par le provider d'identité
	Nickname     string       `json:"nickname"`
	AvatarURL    string       `json:"avatarUrl,omitempty"`
	CreditScore  int          `json:"creditScore"`
	CreditLevel  string       `json:"creditLevel"` // dérivé de CreditScore, voir credit.LevelForScore
	DailyStats   DailyStats   `json:"dailyStats"`
	TotalStats   TotalStats   `json:"totalStats"`
	Achievements []string     `json:"achievements,omitempty"`
	Settings     UserSettings `json:"settings"`
	LastRecovery time.Time    `json:"lastRecoveryAt,omitempty"` // dernière récupération RECOVERY_30D
	IsAdmin      bool         `json:"isAdmin"`
	DateFields
}

// TodayTask état de la tâche d'entraide du jour, renvoyé au bootstrap de session
type TodayTask struct {
	Helped     int  `json:"helped"`
	NeedHelp   int  `json:"needHelp"`
	Published  int  `json:"published"`
	Quota      int  `json:"quota"`
	CanPublish bool `json:"canPublish"`
}

// NeedHelpCount nombre d'entraides requises avant de pouvoir publier
const NeedHelpCount = 2

// AchievementNewbie succès attribué à l'inscription
const AchievementNewbie = "NEWBIE"

// BuildTodayTask construit l'état de la tâche du jour depuis les stats courantes
func BuildTodayTask(u *UserProfile) TodayTask {
	return TodayTask{
		Helped:     u.DailyStats.Helped,
		NeedHelp:   NeedHelpCount,
		Published:  u.DailyStats.Published,
		Quota:      u.DailyStats.Quota,
		CanPublish: u.DailyStats.Helped >= NeedHelpCount && u.DailyStats.Published < u.DailyStats.Quota,
	}
}

// UserCreator carte publique du créateur d'un paquet (affichée dans les listes)
type UserCreator struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CreditScore int    `json:"creditScore"`
	CreditLevel string `json:"creditLevel"`
}
