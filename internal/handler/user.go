package handler

import (
	"net/http"

	"github.com/duckytan/DotCircle/internal/middleware"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/utils"
)

// GetProfile profil de l'utilisateur courant avec la tâche du jour
func GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	// Stats du jour fraîches (la session peut traverser minuit)
	fresh, err := quotaTracker.EnsureCurrent(r.Context(), user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{
		"user":      fresh,
		"todayTask": model.BuildTodayTask(fresh),
	})
}

// UpdateSettings met à jour les préférences de l'utilisateur courant
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	var settings model.UserSettings
	if err := utils.DecodeJSON(r, &settings); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	if err := userStore.UpdateSettings(r.Context(), user.ID, settings); err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, settings)
}

// maxAvatarSize taille maximale acceptée pour un avatar (5 Mo)
const maxAvatarSize = 5 << 20

// UploadAvatar héberge un nouvel avatar et met à jour le profil
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	if avatarUploader == nil {
		utils.Error(w, http.StatusServiceUnavailable, "UPLOAD_UNAVAILABLE", "image hosting is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "missing avatar file")
		return
	}
	defer file.Close()

	url, err := avatarUploader.UploadAvatar(r.Context(), file, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	if err := userStore.UpdateIdentity(r.Context(), user.ID, "", url); err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{"avatarUrl": url})
}

// GetTodayTask état de la tâche d'entraide du jour
func GetTodayTask(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireAuth(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	fresh, err := quotaTracker.EnsureCurrent(r.Context(), user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	utils.Success(w, model.BuildTodayTask(fresh))
}
