package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duckytan/DotCircle/internal/middleware"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/packages"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// GetPackages liste les paquets visibles (actifs par défaut), triés par score
// d'exposition
func GetPackages(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.Pagination(r)

	filter := store.ListFilter{
		Status: model.StatusActive,
		SortBy: r.URL.Query().Get("sortBy"),
		Page:   page,
		Limit:  limit,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = model.PackageStatus(s)
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Type = model.PackageType(t)
	}

	list, err := packageStore.ListPackages(r.Context(), filter)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	// Les liens cadeaux ne sortent jamais dans les listes
	for i := range list {
		list[i].GiftURL = ""
		list[i].ImageURL = ""
	}

	utils.Success(w, map[string]interface{}{
		"list":  list,
		"page":  page,
		"limit": limit,
	})
}

// GetPackageById détail d'un paquet : helpers, créateur, corrections
func GetPackageById(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	pkg, err := packageSvc.Detail(r.Context(), mux.Vars(r)["id"], &user)
	if err != nil {
		fail(w, err)
		return
	}

	utils.Success(w, pkg)
}

// PublishPackage publie un nouveau paquet
func PublishPackage(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var req packages.PublishRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	// Stats du jour à jour avant d'évaluer quota et tâche d'entraide
	fresh, err := quotaTracker.EnsureCurrent(r.Context(), user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	pkg, err := packageSvc.Publish(r.Context(), fresh, req)
	if err != nil {
		fail(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.APIResponse{Success: true, Data: pkg})
}

// GetMyPackages liste les paquets publiés par l'utilisateur courant
func GetMyPackages(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	page, limit := utils.Pagination(r)
	status := model.PackageStatus(r.URL.Query().Get("status"))

	list, err := packageStore.ListByCreator(r.Context(), user.ID, status, page, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{
		"list":  list,
		"page":  page,
		"limit": limit,
	})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelPackage annule un paquet (créateur ou admin)
func CancelPackage(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var req cancelRequest
	_ = utils.DecodeJSON(r, &req) // raison optionnelle

	if err := packageSvc.Cancel(r.Context(), mux.Vars(r)["id"], &user, req.Reason); err != nil {
		fail(w, err)
		return
	}

	utils.Message(w, "paquet annulé")
}

type adjustRequest struct {
	NewCount int    `json:"newCount"`
	Reason   string `json:"reason"`
}

// AdjustHelpCount corrige le compteur d'entraides d'un paquet
func AdjustHelpCount(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var req adjustRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	pkg, err := packageSvc.AdjustHelpCount(r.Context(), mux.Vars(r)["id"], &user, req.NewCount, req.Reason)
	if err != nil {
		fail(w, err)
		return
	}

	utils.Success(w, pkg)
}

// FulfillContract marque le contrat de l'utilisateur courant comme honoré
func FulfillContract(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	if err := packageSvc.FulfillContract(r.Context(), mux.Vars(r)["id"], user.ID); err != nil {
		fail(w, err)
		return
	}

	utils.Message(w, "contrat honoré")
}
