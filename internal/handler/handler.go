package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/duckytan/DotCircle/internal/credit"
	"github.com/duckytan/DotCircle/internal/help"
	"github.com/duckytan/DotCircle/internal/leaderboard"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/packages"
	"github.com/duckytan/DotCircle/internal/quota"
	"github.com/duckytan/DotCircle/internal/store"
	"github.com/duckytan/DotCircle/internal/utils"
)

// Services injectés au démarrage, voir Init
var (
	packageStore   store.PackageStore
	userStore      store.UserStore
	creditSvc      *credit.Service
	packageSvc     *packages.Service
	helpSvc        *help.Coordinator
	leaderboardSvc *leaderboard.Service
	quotaTracker   *quota.Tracker
	avatarUploader AvatarUploader
)

// AvatarUploader hébergement des avatars (Cloudinary), nil si non configuré
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file multipart.File, userID string) (string, error)
}

// Deps dépendances des handlers
type Deps struct {
	Packages    store.PackageStore
	Users       store.UserStore
	Credit      *credit.Service
	PackageSvc  *packages.Service
	Help        *help.Coordinator
	Leaderboard *leaderboard.Service
	Quota       *quota.Tracker
	Avatar      AvatarUploader
}

// Init câble les services dans le package handler. À appeler une fois au
// démarrage, avant SetupRouter.
func Init(d Deps) {
	packageStore = d.Packages
	userStore = d.Users
	creditSvc = d.Credit
	packageSvc = d.PackageSvc
	helpSvc = d.Help
	leaderboardSvc = d.Leaderboard
	quotaTracker = d.Quota
	avatarUploader = d.Avatar
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// fail traduit une erreur métier en réponse HTTP (code API + statut)
func fail(w http.ResponseWriter, err error) {
	utils.Error(w, model.ErrorStatus(err), model.ErrorCode(err), err.Error())
}
