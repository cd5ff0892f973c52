package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duckytan/DotCircle/internal/middleware"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// GetPendingPackages liste les paquets en attente de modération
func GetPendingPackages(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireAdmin(r); err != nil {
		fail(w, model.ErrForbidden)
		return
	}

	page, limit := utils.Pagination(r)
	list, err := packageStore.ListPackages(r.Context(), store.ListFilter{
		Status: model.StatusPending,
		SortBy: "time",
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, list)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// ReviewPackage approuve ou rejette un paquet en attente
func ReviewPackage(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.RequireAdmin(r)
	if err != nil {
		fail(w, model.ErrForbidden)
		return
	}

	var req reviewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	packageID := mux.Vars(r)["id"]
	if err := packageSvc.Review(r.Context(), packageID, req.Approve); err != nil {
		fail(w, err)
		return
	}

	utils.LogInfo("paquet %s modéré par %s (approve=%v)", packageID, admin.ID, req.Approve)
	utils.Message(w, "décision enregistrée")
}

type creditAdjustRequest struct {
	UserID     string `json:"userId"`
	ReasonCode string `json:"reasonCode"`
	RelatedID  string `json:"relatedId"`
}

// AdjustCredit applique manuellement un motif de crédit à un utilisateur
// (signalements validés, sanctions). Le montant vient de la grille, jamais de
// la requête.
func AdjustCredit(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.RequireAdmin(r)
	if err != nil {
		fail(w, model.ErrForbidden)
		return
	}

	var req creditAdjustRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	entry, err := creditSvc.Apply(r.Context(), req.UserID, req.ReasonCode, "admin", req.RelatedID, admin.ID)
	if err != nil {
		fail(w, err)
		return
	}

	utils.Success(w, entry)
}
