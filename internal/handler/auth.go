package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/duckytan/DotCircle/internal/middleware"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/utils"
)

type LoginRequest struct {
	ExternalID string `json:"externalId"`
	Nickname   string `json:"nickname"`
	AvatarURL  string `json:"avatarUrl"`
}

// newUserProfile construit le profil d'un premier passage : score en cache à
// zéro (le registre porte l'écriture INIT qui l'amène à sa valeur de départ),
// succès NEWBIE, préférences ouvertes par défaut.
func newUserProfile(req LoginRequest) *model.UserProfile {
	now := time.Now()
	user := &model.UserProfile{
		ID:           uuid.NewString(),
		ExternalID:   req.ExternalID,
		Nickname:     req.Nickname,
		AvatarURL:    req.AvatarURL,
		CreditScore:  0,
		Achievements: []string{model.AchievementNewbie},
		Settings: model.UserSettings{
			PublicLeaderboard: true,
			EnableContract:    true,
			AllowNotification: true,
		},
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	user.TotalStats.LastActive = now
	return user
}

// Login amorce la session : retrouve (ou crée) l'utilisateur par son
// identifiant externe, effectue la bascule journalière si la date a changé et
// délivre un token de session. Renvoie le profil et la tâche du jour.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	if req.ExternalID == "" {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "externalId requis")
		return
	}

	ctx := r.Context()
	user, err := userStore.GetUserByExternalID(ctx, req.ExternalID)
	if err != nil && err != model.ErrUserNotFound {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	if user == nil || err == model.ErrUserNotFound {
		user = newUserProfile(req)
		if err := userStore.CreateUser(ctx, user); err != nil {
			utils.Error(w, http.StatusInternalServerError, "INTERNAL", "impossible de créer l'utilisateur: "+err.Error())
			return
		}
		if _, err := creditSvc.Bootstrap(ctx, user.ID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "INTERNAL", "impossible d'initialiser le crédit: "+err.Error())
			return
		}
		utils.LogInfo("nouvel utilisateur %s (%s)", user.ID, req.ExternalID)
	} else if req.Nickname != "" || req.AvatarURL != "" {
		// Rafraîchir l'identité fournie par le provider
		nickname := req.Nickname
		if nickname == "" {
			nickname = user.Nickname
		}
		avatar := req.AvatarURL
		if avatar == "" {
			avatar = user.AvatarURL
		}
		if err := userStore.UpdateIdentity(ctx, user.ID, nickname, avatar); err != nil {
			utils.LogError("identité de %s non rafraîchie: %v", user.ID, err)
		}
	}

	// Bascule journalière (quota, série) avant de renvoyer la tâche du jour
	user, err = quotaTracker.EnsureCurrent(ctx, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	if err := userStore.TouchLastActive(ctx, user.ID, time.Now()); err != nil {
		utils.LogError("last_active de %s non mis à jour: %v", user.ID, err)
	}

	ip, userAgent := utils.ExtractIPAndUserAgent(r)
	token, err := utils.CreateSession(ctx, user.ID, ip, userAgent)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "INTERNAL", "could not create session: "+err.Error())
		return
	}

	utils.Success(w, map[string]interface{}{
		"user":      user,
		"token":     token,
		"todayTask": model.BuildTodayTask(user),
	})
}

// Logout invalide la session courante
func Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.GetTokenFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "missing token")
		return
	}

	if err := utils.InvalidateSession(r.Context(), token); err != nil {
		utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}

	utils.Message(w, "déconnecté")
}
