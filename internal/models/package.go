package model

import (
	"time"
)

// PackageType type de paquet cadeau
type PackageType string

const (
	PackageTypeLink  PackageType = "LINK"
	PackageTypeImage PackageType = "IMAGE"
)

// PackageStatus état d'un paquet. Transitions monotones :
// pending → active → completed, pending|active → cancelled.
// completed et cancelled sont terminaux.
type PackageStatus string

const (
	StatusPending   PackageStatus = "pending"
	StatusActive    PackageStatus = "active"
	StatusCompleted PackageStatus = "completed"
	StatusCancelled PackageStatus = "cancelled"
)

// DefaultMaxHelp capacité fixée à la création d'un paquet
const DefaultMaxHelp = 10

// PackageTTL durée de rétention avant expiration d'un paquet
const PackageTTL = 7 * 24 * time.Hour

// Contract contrat de réciprocité optionnel attaché au paquet
type Contract struct {
	Enabled bool `json:"enabled"`
}

// Cancellation trace d'annulation d'un paquet
type Cancellation struct {
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy  string     `json:"cancelledBy,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`
}

// HelpAdjustment correction manuelle du compteur d'entraides (audit)
type HelpAdjustment struct {
	ID         int64     `json:"id,omitempty"`
	PackageID  string    `json:"packageId"`
	FromCount  int       `json:"from"`
	ToCount    int       `json:"to"`
	Reason     string    `json:"reason"`
	AdjustedBy string    `json:"adjustedBy"`
	AdjustedAt time.Time `json:"adjustedAt"`
}

type GiftPackage struct {
	ID            string           `json:"id"`
	CreatorID     string           `json:"creatorId"`
	Type          PackageType      `json:"type"`
	GiftURL       string           `json:"giftUrl,omitempty"`     // LINK uniquement
	GiftID        string           `json:"giftId,omitempty"`      // identifiant extrait du lien, sert à détecter les doublons
	ImageFileID   string           `json:"imageFileId,omitempty"` // IMAGE uniquement
	ImageURL      string           `json:"imageUrl,omitempty"`
	Status        PackageStatus    `json:"status"`
	HelpCount     int              `json:"helpCount"`
	MaxHelp       int              `json:"maxHelp"`
	Contract      Contract         `json:"contract"`
	ExposureScore int              `json:"exposureScore"`
	Cancellation  Cancellation     `json:"cancellation,omitempty"`
	Adjustments   []HelpAdjustment `json:"adjustments,omitempty"`
	Helpers       []HelpRecord     `json:"helpers,omitempty"`
	Publisher     *UserCreator     `json:"publisher,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	ExpireAt      time.Time        `json:"expireAt"`
}

// Remaining nombre de places restantes
func (p *GiftPackage) Remaining() int {
	return p.MaxHelp - p.HelpCount
}

// Terminal indique si le paquet ne peut plus changer d'état
func (p *GiftPackage) Terminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusCancelled
}

// HelpRecord trace d'une entraide. Immuable après création, sauf les champs de
// contrat et les drapeaux d'effets secondaires (stats/crédit) utilisés pour la
// reprise idempotente. Unique par (packageId, helperId).
type HelpRecord struct {
	ID              int64      `json:"id,omitempty"`
	PackageID       string     `json:"packageId"`
	CreatorID       string     `json:"creatorId"`
	HelperID        string     `json:"helperId"`
	HelperNickname  string     `json:"nickname,omitempty"`
	HelperAvatarURL string     `json:"avatarUrl,omitempty"`
	ContractEnabled bool       `json:"contractEnabled"`
	Fulfilled       bool       `json:"fulfilled"`
	FulfilledAt     *time.Time `json:"fulfilledAt,omitempty"`
	StatsApplied    bool       `json:"-"` // compteurs du helper incrémentés
	CreditApplied   bool       `json:"-"` // décision de crédit prise (accordé ou non)
	CreditGranted   bool       `json:"creditGranted"`
	HelpedAt        time.Time  `json:"helpedAt"`
}

// HelpResult résultat d'une entraide réussie
type HelpResult struct {
	PackageID   string        `json:"packageId"`
	HelpCount   int           `json:"helpCount"`
	Status      PackageStatus `json:"status"`
	CreditAdded bool          `json:"creditAdded"`
	GiftURL     string        `json:"giftUrl,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
}
