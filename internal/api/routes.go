package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/duckytan/DotCircle/internal/handler"
	"github.com/duckytan/DotCircle/internal/middleware"
)

func SetupRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)

	authenticatedRoutes := r.PathPrefix("/").Subrouter()
	authenticatedRoutes.Use(middleware.AuthMiddleware)

	// Root - API documentation
	r.HandleFunc("/", handler.RootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/login", handler.Login).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/auth/logout", handler.Logout).Methods(http.MethodPost)

	// Packages
	r.HandleFunc("/packages", handler.GetPackages).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/packages", handler.PublishPackage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/packages/mine", handler.GetMyPackages).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/packages/{id}", handler.GetPackageById).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/packages/{id}/help", handler.HelpPackage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/packages/{id}/helpers", handler.GetHelpers).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/packages/{id}/cancel", handler.CancelPackage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/packages/{id}/adjust", handler.AdjustHelpCount).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/packages/{id}/contract/fulfill", handler.FulfillContract).Methods(http.MethodPost)

	// Credit
	authenticatedRoutes.HandleFunc("/credit/history", handler.GetCreditHistory).Methods(http.MethodGet)
	r.HandleFunc("/credit/rules", handler.GetCreditRules).Methods(http.MethodGet)

	// Users
	authenticatedRoutes.HandleFunc("/users/me", handler.GetProfile).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/me/today-task", handler.GetTodayTask).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/me/settings", handler.UpdateSettings).Methods(http.MethodPut, http.MethodPatch)
	authenticatedRoutes.HandleFunc("/users/me/avatar", handler.UploadAvatar).Methods(http.MethodPost)

	// Leaderboard
	r.HandleFunc("/leaderboard/{type}", handler.GetLeaderboard).Methods(http.MethodGet)

	// Admin
	authenticatedRoutes.HandleFunc("/admin/packages/pending", handler.GetPendingPackages).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/admin/packages/{id}/review", handler.ReviewPackage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/admin/credit/adjust", handler.AdjustCredit).Methods(http.MethodPost)

	return r
}
