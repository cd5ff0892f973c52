package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duckytan/DotCircle/internal/middleware"
	"github.com/duckytan/DotCircle/internal/utils"
)

// HelpPackage réclame une place d'entraide sur un paquet. Idempotent : un
// second appel du même helper renvoie ALREADY_HELPED.
func HelpPackage(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	// Bascule journalière avant de compter l'entraide du jour
	if _, err := quotaTracker.EnsureCurrent(r.Context(), user.ID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	result, err := helpSvc.Help(r.Context(), mux.Vars(r)["id"], user.ID)
	if err != nil {
		fail(w, err)
		return
	}

	utils.Success(w, result)
}

// GetHelpers liste les entraides d'un paquet
func GetHelpers(w http.ResponseWriter, r *http.Request) {
	helpers, err := packageStore.ListHelpers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	for i := range helpers {
		helpers[i].HelperNickname = utils.MaskNickname(helpers[i].HelperNickname)
	}

	utils.Success(w, helpers)
}
