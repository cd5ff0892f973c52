// Package help orchestre la transaction d'entraide.
//
// Une entraide traverse deux agrégats indépendants (paquet puis utilisateur)
// sans transaction commune. La mutation du paquet et l'insertion du
// help_record sont atomiques (store.PackageStore.ClaimSlot) ; les effets
// secondaires côté utilisateur (compteurs, crédit) sont appliqués ensuite et
// tracés par des drapeaux sur le help_record. Une requête rejouée reprend là
// où la précédente s'est arrêtée au lieu de re-tenter la mutation du paquet.
package help

import (
	"context"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// maxClaimAttempts tentatives de CAS avant d'abandonner et de resurfacer
// l'état courant (Full / NotActive)
const maxClaimAttempts = 3

type Coordinator struct {
	Packages store.PackageStore
	Users    store.UserStore
	Credit   *credit.Service
}

func NewCoordinator(packages store.PackageStore, users store.UserStore, creditSvc *credit.Service) *Coordinator {
	return &Coordinator{Packages: packages, Users: users, Credit: creditSvc}
}

// Help réserve une place sur le paquet pour le helper.
//
// Erreurs métier : ErrHelperNotFound, ErrPackageNotFound, ErrPackageNotActive,
// ErrPackageFull, ErrAlreadyHelped, ErrSelfHelp.
func (c *Coordinator) Help(ctx context.Context, packageID, helperID string) (*model.HelpResult, error) {
	if _, err := c.Users.GetUser(ctx, helperID); err != nil {
		if err == model.ErrUserNotFound {
			return nil, model.ErrHelperNotFound
		}
		return nil, err
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		pkg, err := c.Packages.GetPackage(ctx, packageID)
		if err != nil {
			return nil, err
		}

		// Reprise : un help_record existant signifie que la mutation du
		// paquet a déjà été validée pour ce helper — on ne la rejoue pas
		rec, err := c.Packages.GetHelpRecord(ctx, packageID, helperID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return c.resume(ctx, pkg, rec)
		}

		if err := validate(pkg, helperID); err != nil {
			return nil, err
		}

		claimed, err := c.Packages.ClaimSlot(ctx, packageID, pkg.HelpCount, model.HelpRecord{
			PackageID:       packageID,
			CreatorID:       pkg.CreatorID,
			HelperID:        helperID,
			ContractEnabled: pkg.Contract.Enabled,
			HelpedAt:        time.Now(),
		})
		if err == model.ErrAlreadyHelped {
			// Requête concurrente du même helper : elle a gagné, on reprend
			continue
		}
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Un autre helper a pris la place observée, on relit et revalide
			continue
		}

		newCount := pkg.HelpCount + 1
		status := pkg.Status
		if newCount >= pkg.MaxHelp {
			status = model.StatusCompleted
		}

		creditAdded := c.applySideEffects(ctx, packageID, helperID)

		return &model.HelpResult{
			PackageID:   packageID,
			HelpCount:   newCount,
			Status:      status,
			CreditAdded: creditAdded,
			GiftURL:     pkg.GiftURL,
			ImageURL:    pkg.ImageURL,
		}, nil
	}

	// Les tentatives sont épuisées : on resurface l'état courant du paquet
	pkg, err := c.Packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if err := validate(pkg, helperID); err != nil {
		return nil, err
	}
	return nil, model.ErrPackageFull
}

// validate vérifie dans l'ordre : état, capacité, demandeur. Un paquet
// complété est "plein" pour le demandeur, quel que soit l'ordre dans lequel
// la course s'est terminée.
func validate(pkg *model.GiftPackage, helperID string) error {
	if pkg.Status == model.StatusCompleted {
		return model.ErrPackageFull
	}
	if pkg.Status != model.StatusActive {
		return model.ErrPackageNotActive
	}
	if pkg.HelpCount >= pkg.MaxHelp {
		return model.ErrPackageFull
	}
	if pkg.CreatorID == helperID {
		return model.ErrSelfHelp
	}
	return nil
}

// applySideEffects applique les effets côté utilisateur après la réservation.
// Chaque étape est marquée sur le help_record ; un échec est loggé et laissé
// au worker de réparation — la réservation reste acquise.
func (c *Coordinator) applySideEffects(ctx context.Context, packageID, helperID string) bool {
	dailyHelped, err := c.Users.IncrementHelped(ctx, helperID)
	if err != nil {
		utils.LogError("stats du helper %s non incrémentées (paquet %s): %v", helperID, packageID, err)
		return false
	}
	if err := c.Packages.MarkStatsApplied(ctx, packageID, helperID); err != nil {
		utils.LogError("marquage stats_applied (%s, %s): %v", packageID, helperID, err)
	}

	granted := false
	if dailyHelped <= credit.DailyHelpCreditCap {
		if _, err := c.Credit.Apply(ctx, helperID, credit.ReasonDailyHelp, "help", packageID, credit.OperatorSystem); err != nil {
			utils.LogError("crédit DAILY_HELP pour %s non appliqué (paquet %s): %v", helperID, packageID, err)
			return false
		}
		granted = true
	}
	if err := c.Packages.MarkCreditApplied(ctx, packageID, helperID, granted); err != nil {
		utils.LogError("marquage credit_applied (%s, %s): %v", packageID, helperID, err)
	}
	return granted
}

// resume termine les effets secondaires restants d'une entraide déjà validée.
// Si tout était déjà appliqué, l'appel est un doublon : ErrAlreadyHelped.
func (c *Coordinator) resume(ctx context.Context, pkg *model.GiftPackage, rec *model.HelpRecord) (*model.HelpResult, error) {
	if rec.StatsApplied && rec.CreditApplied {
		return nil, model.ErrAlreadyHelped
	}

	creditAdded := rec.CreditGranted
	dailyHelped := 0

	if !rec.StatsApplied {
		n, err := c.Users.IncrementHelped(ctx, rec.HelperID)
		if err != nil {
			return nil, err
		}
		dailyHelped = n
		if err := c.Packages.MarkStatsApplied(ctx, pkg.ID, rec.HelperID); err != nil {
			utils.LogError("marquage stats_applied (%s, %s): %v", pkg.ID, rec.HelperID, err)
		}
	} else {
		// Stats déjà appliquées : la décision de crédit se prend sur le
		// compteur journalier courant
		helper, err := c.Users.GetUser(ctx, rec.HelperID)
		if err != nil {
			return nil, err
		}
		dailyHelped = helper.DailyStats.Helped
	}

	if !rec.CreditApplied {
		granted := false
		if dailyHelped <= credit.DailyHelpCreditCap {
			if _, err := c.Credit.Apply(ctx, rec.HelperID, credit.ReasonDailyHelp, "help", pkg.ID, credit.OperatorSystem); err != nil {
				return nil, err
			}
			granted = true
		}
		if err := c.Packages.MarkCreditApplied(ctx, pkg.ID, rec.HelperID, granted); err != nil {
			utils.LogError("marquage credit_applied (%s, %s): %v", pkg.ID, rec.HelperID, err)
		}
		creditAdded = granted
	}

	return &model.HelpResult{
		PackageID:   pkg.ID,
		HelpCount:   pkg.HelpCount,
		Status:      pkg.Status,
		CreditAdded: creditAdded,
		GiftURL:     pkg.GiftURL,
		ImageURL:    pkg.ImageURL,
	}, nil
}

// Repair rejoue les effets secondaires d'un help_record en attente. Utilisé
// par le worker de maintenance.
func (c *Coordinator) Repair(ctx context.Context, rec model.HelpRecord) error {
	pkg, err := c.Packages.GetPackage(ctx, rec.PackageID)
	if err != nil {
		return err
	}
	_, err = c.resume(ctx, pkg, &rec)
	if err == model.ErrAlreadyHelped {
		return nil
	}
	return err
}
