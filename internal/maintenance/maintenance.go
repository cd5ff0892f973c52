// Package maintenance fait tourner les tâches périodiques : reprise des
// effets secondaires d'entraide restés en suspens, récupération naturelle du
// crédit (30 jours) et expiration des paquets.
package maintenance

import (
	"context"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
	"github.com/duckytan/DotCircle/internal/help"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

const (
	// recoveryInterval délai entre deux récupérations naturelles de crédit
	recoveryInterval = 30 * 24 * time.Hour
	// recoveryMaxScore la récupération ne s'applique qu'aux scores en dessous
	recoveryMaxScore = credit.DefaultScore
	// pendingGrace délai avant de considérer un effet secondaire comme bloqué
	pendingGrace = time.Minute
	batchSize    = 100
)

type Worker struct {
	Packages    store.PackageStore
	Users       store.UserStore
	Credit      *credit.Service
	Coordinator *help.Coordinator
	Interval    time.Duration
}

func NewWorker(packages store.PackageStore, users store.UserStore, creditSvc *credit.Service, coord *help.Coordinator, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Worker{Packages: packages, Users: users, Credit: creditSvc, Coordinator: coord, Interval: interval}
}

// Run boucle jusqu'à annulation du contexte. Un tour est lancé immédiatement
// au démarrage puis à chaque tic.
func (w *Worker) Run(ctx context.Context) {
	utils.LogInfo("worker de maintenance démarré (intervalle %s)", w.Interval)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("worker de maintenance arrêté")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce exécute un tour complet de maintenance
func (w *Worker) RunOnce(ctx context.Context) {
	w.repairPending(ctx)
	w.recoverCredit(ctx)
	w.expirePackages(ctx)
}

// repairPending rejoue les effets secondaires (stats, crédit) des entraides
// dont l'application a échoué après la réclamation de la place
func (w *Worker) repairPending(ctx context.Context) {
	records, err := w.Packages.PendingSideEffects(ctx, time.Now().Add(-pendingGrace), batchSize)
	if err != nil {
		utils.LogError("lecture des effets secondaires en suspens: %v", err)
		return
	}
	for _, rec := range records {
		if err := w.Coordinator.Repair(ctx, rec); err != nil {
			utils.LogError("reprise de l'entraide %s/%s: %v", rec.PackageID, rec.HelperID, err)
		}
	}
	if len(records) > 0 {
		utils.LogInfo("maintenance: %d entraides reprises", len(records))
	}
}

// recoverCredit applique RECOVERY_30D aux utilisateurs éligibles : score sous
// le seuil et aucune récupération depuis 30 jours
func (w *Worker) recoverCredit(ctx context.Context) {
	now := time.Now()
	ids, err := w.Users.UsersDueRecovery(ctx, now.Add(-recoveryInterval), recoveryMaxScore, batchSize)
	if err != nil {
		utils.LogError("lecture des utilisateurs éligibles à la récupération: %v", err)
		return
	}
	for _, id := range ids {
		if _, err := w.Credit.Apply(ctx, id, credit.ReasonRecovery30D, "system", "", credit.OperatorSystem); err != nil {
			utils.LogError("récupération de crédit pour %s: %v", id, err)
			continue
		}
		if err := w.Users.SetLastRecovery(ctx, id, now); err != nil {
			utils.LogError("horodatage de récupération pour %s: %v", id, err)
		}
	}
	if len(ids) > 0 {
		utils.LogInfo("maintenance: récupération de crédit appliquée à %d utilisateurs", len(ids))
	}
}

// expirePackages annule les paquets actifs ou en attente dont le TTL est échu
func (w *Worker) expirePackages(ctx context.Context) {
	n, err := w.Packages.ExpirePackages(ctx, time.Now())
	if err != nil {
		utils.LogError("expiration des paquets: %v", err)
		return
	}
	if n > 0 {
		utils.LogInfo("maintenance: %d paquets expirés", n)
	}
}
