// Package store définit les contrats de persistance consommés par les
// services. L'implémentation de production est store/postgres ; store/memory
// sert aux tests du moteur de transaction.
package store

import (
	"context"
	"time"

	model "github.com/duckytan/DotCircle/internal/models"
)

// ListFilter critères de listing des paquets
type ListFilter struct {
	Status model.PackageStatus // vide = tous
	Type   model.PackageType   // vide = tous
	SortBy string              // "exposure" (défaut) ou "time"
	Page   int
	Limit  int
}

// LeaderboardMetric colonne de classement
type LeaderboardMetric string

const (
	MetricTotalHelped    LeaderboardMetric = "total_helped"
	MetricCreditScore    LeaderboardMetric = "credit_score"
	MetricStreakDays     LeaderboardMetric = "streak_days"
	MetricTotalPublished LeaderboardMetric = "total_published"
)

// PackageStore persistance de l'agrégat paquet (capacité, statut, helpers).
//
// ClaimSlot est le point de linéarisation des entraides : il incrémente le
// compteur sous condition du compte observé (compare-and-swap), insère le
// HelpRecord sous la contrainte unique (package_id, helper_id) et bascule le
// statut à completed quand la capacité est atteinte — le tout atomiquement.
// Retour (false, nil) si un concurrent a gagné la course (le compte observé
// ne correspondait plus) ; model.ErrAlreadyHelped si le helper avait déjà
// une entraide sur ce paquet.
type PackageStore interface {
	CreatePackage(ctx context.Context, pkg *model.GiftPackage) error
	GetPackage(ctx context.Context, id string) (*model.GiftPackage, error)
	ListPackages(ctx context.Context, f ListFilter) ([]model.GiftPackage, error)
	ListByCreator(ctx context.Context, creatorID string, status model.PackageStatus, page, limit int) ([]model.GiftPackage, error)
	ActiveGiftExists(ctx context.Context, giftID string) (bool, error)

	ClaimSlot(ctx context.Context, packageID string, expectedCount int, rec model.HelpRecord) (bool, error)
	GetHelpRecord(ctx context.Context, packageID, helperID string) (*model.HelpRecord, error)
	ListHelpers(ctx context.Context, packageID string) ([]model.HelpRecord, error)
	MarkStatsApplied(ctx context.Context, packageID, helperID string) error
	MarkCreditApplied(ctx context.Context, packageID, helperID string, granted bool) error
	FulfillContract(ctx context.Context, packageID, helperID string, at time.Time) error

	CancelPackage(ctx context.Context, packageID, cancelledBy, reason string) error
	SetStatus(ctx context.Context, packageID string, from, to model.PackageStatus) (bool, error)
	AdjustHelpCount(ctx context.Context, packageID string, expectedCount, newCount int, adj model.HelpAdjustment) (bool, error)
	ListAdjustments(ctx context.Context, packageID string) ([]model.HelpAdjustment, error)

	PendingSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]model.HelpRecord, error)
	ExpirePackages(ctx context.Context, now time.Time) (int, error)
}

// UserStore persistance de l'agrégat utilisateur.
//
// RolloverDaily est conditionné sur la date journalière stockée : si elle a
// changé entre lecture et écriture (deux sessions qui traversent minuit en
// même temps), l'appel retourne (false, nil) et l'appelant relit.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.UserProfile) error
	GetUser(ctx context.Context, id string) (*model.UserProfile, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.UserProfile, error)
	UpdateIdentity(ctx context.Context, id, nickname, avatarURL string) error
	UpdateSettings(ctx context.Context, id string, s model.UserSettings) error
	TouchLastActive(ctx context.Context, id string, at time.Time) error

	RolloverDaily(ctx context.Context, id, fromDate string, daily model.DailyStats, streakDays int) (bool, error)
	IncrementHelped(ctx context.Context, id string) (int, error)
	IncrementPublished(ctx context.Context, id string) error

	TopUsers(ctx context.Context, metric LeaderboardMetric, limit int) ([]model.LeaderboardEntry, error)
	UsersDueRecovery(ctx context.Context, before time.Time, maxScore, limit int) ([]string, error)
	SetLastRecovery(ctx context.Context, id string, at time.Time) error
}

// LedgerStore registre de crédit append-only.
//
// AppendEntry verrouille l'utilisateur, insère l'écriture avec les soldes
// avant/après et met à jour le score en cache (et le niveau dérivé) dans la
// même transaction : le registre reste la source de vérité, le champ n'est
// qu'un cache réconciliable.
type LedgerStore interface {
	AppendEntry(ctx context.Context, userID string, delta int, reasonCode, reason, relatedType, relatedID, operator string) (*model.CreditEntry, error)
	History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, error)
	SumEntries(ctx context.Context, userID string) (int, error)
}
