package handler

import (
	"net/http"

	"github.com/duckytan/DotCircle/internal/credit"
	"github.com/duckytan/DotCircle/internal/middleware"
	"github.com/duckytan/DotCircle/internal/utils"
)

// GetCreditHistory historique de crédit de l'utilisateur courant, du plus
// récent au plus ancien
func GetCreditHistory(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	page, limit := utils.Pagination(r)
	entries, err := creditSvc.History(r.Context(), user.ID, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{
		"creditScore": user.CreditScore,
		"creditLevel": user.CreditLevel,
		"list":        entries,
		"page":        page,
		"limit":       limit,
	})
}

// GetCreditRules expose la grille des niveaux et des motifs de crédit
func GetCreditRules(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, map[string]interface{}{
		"levels":          credit.Levels,
		"reasons":         credit.Rules,
		"minPublishScore": credit.MinPublishScore,
		"dailyHelpCap":    credit.DailyHelpCreditCap,
	})
}
