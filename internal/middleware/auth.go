package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/duckytan/DotCircle/internal/database"
	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/scanner"
	"github.com/duckytan/DotCircle/internal/utils"
)

// Context keys
type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

// AuthMiddleware valide le token de session et injecte l'utilisateur dans le
// contexte
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization token")
			return
		}

		user, err := validateTokenAndGetUser(r.Context(), token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", fmt.Sprintf("invalid token: %v", err))
			return
		}

		// Injecter l'utilisateur et le token dans le contexte
		ctx := ContextWithUser(r.Context(), *user)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithUser attache un utilisateur authentifié au contexte
func ContextWithUser(ctx context.Context, user model.UserProfile) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// validateTokenAndGetUser valide le token et retourne l'utilisateur associé
func validateTokenAndGetUser(ctx context.Context, token string) (*model.UserProfile, error) {
	query := `
	SELECT
		u.id, u.external_id, u.nickname, u.avatar_url, u.is_admin,
		u.credit_score, u.credit_level,
		u.daily_date, u.daily_helped, u.daily_published, u.daily_quota,
		u.total_helped, u.total_published, u.streak_days, u.last_active, u.last_recovery_at,
		u.achievements, u.public_leaderboard, u.enable_contract, u.allow_notification,
		u.created_at, u.updated_at
	FROM users u
	JOIN sessions s ON u.id = s.user_id
	WHERE s.token = $1
		AND s.is_active = true
		AND s.expires_at > NOW()
		AND s.deleted_at IS NULL`

	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("token not found or expired")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return user, nil
}

// GetUserFromContext récupère l'utilisateur depuis le contexte de la requête
func GetUserFromContext(r *http.Request) (model.UserProfile, error) {
	user, ok := r.Context().Value(userContextKey).(model.UserProfile)
	if !ok {
		return model.UserProfile{}, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// GetTokenFromContext récupère le token depuis le contexte de la requête
func GetTokenFromContext(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in context")
	}
	return token, nil
}

// RequireAuth est un helper pour vérifier qu'un utilisateur est authentifié dans un handler
func RequireAuth(r *http.Request) (model.UserProfile, error) {
	return GetUserFromContext(r)
}

// RequireAdmin vérifie que l'utilisateur du contexte est administrateur
func RequireAdmin(r *http.Request) (model.UserProfile, error) {
	user, err := GetUserFromContext(r)
	if err != nil {
		return model.UserProfile{}, err
	}
	if !user.IsAdmin {
		return model.UserProfile{}, model.ErrForbidden
	}
	return user, nil
}
