// Package packages porte le cycle de vie des paquets cadeaux : publication
// (avec la barrière d'éligibilité), annulation, correction du compteur et
// décision de modération.
package packages

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/duckytan/DotCircle/internal/credit"
	"github.com/duckytan/DotCircle/internal/exposure"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// maxAdjustAttempts tentatives de correction avant d'abandonner sur conflit
const maxAdjustAttempts = 3

// ImageUploader collaborateur externe d'hébergement d'images (Cloudinary)
type ImageUploader interface {
	UploadPackageImage(ctx context.Context, fileID, packageID string) (string, error)
}

type Service struct {
	Packages store.PackageStore
	Users    store.UserStore
	Credit   *credit.Service
	Uploader ImageUploader // nil si l'hébergement d'images n'est pas configuré
}

func NewService(packages store.PackageStore, users store.UserStore, creditSvc *credit.Service, uploader ImageUploader) *Service {
	return &Service{Packages: packages, Users: users, Credit: creditSvc, Uploader: uploader}
}

// PublishRequest données de publication d'un paquet
type PublishRequest struct {
	Type            model.PackageType `json:"type"`
	GiftURL         string            `json:"giftUrl,omitempty"`
	ImageFileID     string            `json:"imageFileId,omitempty"`
	ContractEnabled bool              `json:"enableContract"`
}

// Publish publie un paquet pour le créateur donné.
//
// Barrière d'éligibilité : score ≥ 20, quota journalier non épuisé, tâche
// d'entraide du jour accomplie (≥ 2 entraides). Le statut initial dépend du
// niveau : les niveaux auto-audités publient directement en active, les
// autres en pending jusqu'à la décision de modération externe.
func (s *Service) Publish(ctx context.Context, creator *model.UserProfile, req PublishRequest) (*model.GiftPackage, error) {
	if creator.CreditScore < credit.MinPublishScore {
		return nil, model.ErrInsufficientCredit
	}
	if creator.DailyStats.Published >= creator.DailyStats.Quota {
		return nil, model.ErrQuotaExceeded
	}
	if creator.DailyStats.Helped < model.NeedHelpCount {
		return nil, model.ErrHelpTaskIncomplete
	}

	now := time.Now()
	level := credit.Level(creator.CreditLevel)

	pkg := &model.GiftPackage{
		ID:        uuid.NewString(),
		CreatorID: creator.ID,
		Type:      req.Type,
		Status:    model.StatusPending,
		HelpCount: 0,
		MaxHelp:   model.DefaultMaxHelp,
		Contract:  model.Contract{Enabled: req.ContractEnabled},
		CreatedAt: now,
		UpdatedAt: now,
		ExpireAt:  now.Add(model.PackageTTL),
	}
	if credit.AutoAudit(level) {
		pkg.Status = model.StatusActive
	}

	switch req.Type {
	case model.PackageTypeLink:
		giftID, ok := ParseGiftURL(req.GiftURL)
		if !ok {
			return nil, model.ErrInvalidLink
		}
		exists, err := s.Packages.ActiveGiftExists(ctx, giftID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrDuplicateGift
		}
		pkg.GiftURL = req.GiftURL
		pkg.GiftID = giftID
	case model.PackageTypeImage:
		pkg.ImageFileID = req.ImageFileID
		if s.Uploader != nil && req.ImageFileID != "" {
			url, err := s.Uploader.UploadPackageImage(ctx, req.ImageFileID, pkg.ID)
			if err != nil {
				return nil, err
			}
			pkg.ImageURL = url
		}
	default:
		return nil, model.ErrInvalidLink
	}

	pkg.ExposureScore = exposure.Score(pkg.CreatedAt, pkg.HelpCount, pkg.MaxHelp, level, now)

	if err := s.Packages.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}

	// Compteurs de publication : échec non bloquant une fois le paquet créé,
	// le worker de maintenance n'y touche pas mais le paquet existe
	if err := s.Users.IncrementPublished(ctx, creator.ID); err != nil {
		utils.LogError("compteurs de publication de %s non incrémentés: %v", creator.ID, err)
	}

	return pkg, nil
}

// Detail compose la vue complète d'un paquet : helpers, carte du créateur et
// historique des corrections. Le lien cadeau est masqué pour tout lecteur qui
// n'est ni le créateur ni un helper.
func (s *Service) Detail(ctx context.Context, packageID string, viewer *model.UserProfile) (*model.GiftPackage, error) {
	pkg, err := s.Packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	helpers, err := s.Packages.ListHelpers(ctx, packageID)
	if err != nil {
		return nil, err
	}
	pkg.Helpers = helpers

	adjustments, err := s.Packages.ListAdjustments(ctx, packageID)
	if err != nil {
		return nil, err
	}
	pkg.Adjustments = adjustments

	creator, err := s.Users.GetUser(ctx, pkg.CreatorID)
	if err == nil {
		pkg.Publisher = &model.UserCreator{
			ID:          creator.ID,
			Nickname:    creator.Nickname,
			AvatarURL:   creator.AvatarURL,
			CreditScore: creator.CreditScore,
			CreditLevel: creator.CreditLevel,
		}
	}

	if viewer == nil || !s.canSeeGift(pkg, helpers, viewer.ID) {
		pkg.GiftURL = ""
		pkg.ImageURL = ""
	}
	return pkg, nil
}

func (s *Service) canSeeGift(pkg *model.GiftPackage, helpers []model.HelpRecord, viewerID string) bool {
	if pkg.CreatorID == viewerID {
		return true
	}
	for _, h := range helpers {
		if h.HelperID == viewerID {
			return true
		}
	}
	return false
}

// Cancel annule un paquet. Créateur ou admin uniquement ; un paquet complété
// ne s'annule pas.
func (s *Service) Cancel(ctx context.Context, packageID string, requester *model.UserProfile, reason string) error {
	pkg, err := s.Packages.GetPackage(ctx, packageID)
	if err != nil {
		return err
	}
	if pkg.CreatorID != requester.ID && !requester.IsAdmin {
		return model.ErrForbidden
	}
	if pkg.Status == model.StatusCompleted {
		return model.ErrAlreadyCompleted
	}
	if pkg.Status == model.StatusCancelled {
		return nil // déjà annulé, idempotent
	}
	return s.Packages.CancelPackage(ctx, packageID, requester.ID, reason)
}

// AdjustHelpCount corrige manuellement le compteur d'entraides (paquets dont
// des places ont été consommées hors plateforme). Le nouveau compte doit être
// strictement croissant et borné par la capacité ; chaque correction est
// tracée dans l'audit.
func (s *Service) AdjustHelpCount(ctx context.Context, packageID string, requester *model.UserProfile, newCount int, reason string) (*model.GiftPackage, error) {
	for attempt := 0; attempt < maxAdjustAttempts; attempt++ {
		pkg, err := s.Packages.GetPackage(ctx, packageID)
		if err != nil {
			return nil, err
		}
		if pkg.CreatorID != requester.ID && !requester.IsAdmin {
			return nil, model.ErrForbidden
		}
		if newCount <= pkg.HelpCount {
			return nil, model.ErrCountNotIncreasing
		}
		if newCount > pkg.MaxHelp {
			return nil, model.ErrCountExceedsMax
		}

		ok, err := s.Packages.AdjustHelpCount(ctx, packageID, pkg.HelpCount, newCount, model.HelpAdjustment{
			PackageID:  packageID,
			FromCount:  pkg.HelpCount,
			ToCount:    newCount,
			Reason:     reason,
			AdjustedBy: requester.ID,
			AdjustedAt: time.Now(),
		})
		if err != nil {
			return nil, err
		}
		if ok {
			return s.Packages.GetPackage(ctx, packageID)
		}
		// Conflit avec une entraide concurrente : on relit et on revalide
	}
	return nil, model.ErrStoreConflict
}

// Review applique la décision de modération externe sur un paquet en attente
func (s *Service) Review(ctx context.Context, packageID string, approve bool) error {
	to := model.StatusCancelled
	if approve {
		to = model.StatusActive
	}
	ok, err := s.Packages.SetStatus(ctx, packageID, model.StatusPending, to)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrPackageNotActive
	}
	return nil
}

// FulfillContract marque le contrat d'un helper comme honoré et crédite
// CONTRACT_FULFILL.
func (s *Service) FulfillContract(ctx context.Context, packageID, helperID string) error {
	pkg, err := s.Packages.GetPackage(ctx, packageID)
	if err != nil {
		return err
	}
	if !pkg.Contract.Enabled {
		return model.ErrContractDisabled
	}
	rec, err := s.Packages.GetHelpRecord(ctx, packageID, helperID)
	if err != nil {
		return err
	}
	if rec == nil {
		return model.ErrPackageNotFound
	}
	if rec.Fulfilled {
		return model.ErrContractFulfilled
	}
	if err := s.Packages.FulfillContract(ctx, packageID, helperID, time.Now()); err != nil {
		return err
	}
	if _, err := s.Credit.Apply(ctx, helperID, credit.ReasonContractFulfill, "help", packageID, credit.OperatorSystem); err != nil {
		utils.LogError("crédit CONTRACT_FULFILL pour %s non appliqué: %v", helperID, err)
	}
	return nil
}
