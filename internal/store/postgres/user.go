package postgres

import (
	"context"
	"fmt"
	"time"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/scanner"
	"github.com/duckytan/DotCircle/internal/store"
)

const userColumns = `id, external_id, nickname, avatar_url, is_admin,
	credit_score, credit_level,
	daily_date, daily_helped, daily_published, daily_quota,
	total_helped, total_published, streak_days, last_active, last_recovery_at,
	achievements, public_leaderboard, enable_contract, allow_notification,
	created_at, updated_at`

// CreateUser insère un nouvel utilisateur
func (s *Store) CreateUser(ctx context.Context, u *model.UserProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users(id, external_id, nickname, avatar_url, is_admin,
		 credit_score, credit_level,
		 daily_date, daily_helped, daily_published, daily_quota,
		 total_helped, total_published, streak_days, last_active,
		 achievements, public_leaderboard, enable_contract, allow_notification,
		 created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())`,
		u.ID, u.ExternalID, u.Nickname, u.AvatarURL, u.IsAdmin,
		u.CreditScore, u.CreditLevel,
		u.DailyStats.Date, u.DailyStats.Helped, u.DailyStats.Published, u.DailyStats.Quota,
		u.TotalStats.TotalHelped, u.TotalStats.TotalPublished, u.TotalStats.StreakDays, u.TotalStats.LastActive,
		u.Achievements, u.Settings.PublicLeaderboard, u.Settings.EnableContract, u.Settings.AllowNotification,
	)
	if err != nil {
		return fmt.Errorf("impossible de créer l'utilisateur: %w", err)
	}
	return nil
}

// GetUser récupère un utilisateur par son ID
func (s *Store) GetUser(ctx context.Context, id string) (*model.UserProfile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1 AND deleted_at IS NULL`, id)

	u, err := scanner.ScanUserProfile(row)
	if err != nil {
		if noRows(err) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("impossible de lire l'utilisateur: %w", err)
	}
	return u, nil
}

// GetUserByExternalID récupère un utilisateur par l'identifiant du provider d'identité
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*model.UserProfile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE external_id=$1 AND deleted_at IS NULL`, externalID)

	u, err := scanner.ScanUserProfile(row)
	if err != nil {
		if noRows(err) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("impossible de lire l'utilisateur: %w", err)
	}
	return u, nil
}

// UpdateIdentity met à jour pseudo et avatar si fournis
func (s *Store) UpdateIdentity(ctx context.Context, id, nickname, avatarURL string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET nickname = CASE WHEN $2 <> '' THEN $2 ELSE nickname END,
		     avatar_url = CASE WHEN $3 <> '' THEN $3 ELSE avatar_url END,
		     updated_at = NOW()
		 WHERE id=$1 AND deleted_at IS NULL`,
		id, nickname, avatarURL,
	)
	if err != nil {
		return fmt.Errorf("impossible de mettre à jour l'identité: %w", err)
	}
	return nil
}

// UpdateSettings remplace les préférences utilisateur
func (s *Store) UpdateSettings(ctx context.Context, id string, set model.UserSettings) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET public_leaderboard=$2, enable_contract=$3, allow_notification=$4, updated_at=NOW()
		 WHERE id=$1 AND deleted_at IS NULL`,
		id, set.PublicLeaderboard, set.EnableContract, set.AllowNotification,
	)
	if err != nil {
		return fmt.Errorf("impossible de mettre à jour les préférences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// TouchLastActive met à jour la dernière activité
func (s *Store) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active=$2, updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`,
		id, at,
	)
	return err
}

// RolloverDaily bascule les compteurs journaliers sur la nouvelle date.
// Conditionné sur la date stockée : si deux sessions traversent minuit en
// même temps, une seule écrit, l'autre voit 0 ligne touchée et relit.
func (s *Store) RolloverDaily(ctx context.Context, id, fromDate string, daily model.DailyStats, streakDays int) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET daily_date=$3, daily_helped=$4, daily_published=$5, daily_quota=$6,
		     streak_days=$7, last_active=NOW(), updated_at=NOW()
		 WHERE id=$1 AND daily_date=$2 AND deleted_at IS NULL`,
		id, fromDate, daily.Date, daily.Helped, daily.Published, daily.Quota, streakDays,
	)
	if err != nil {
		return false, fmt.Errorf("impossible de basculer les stats journalières: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementHelped incrémente les compteurs d'entraide et retourne le compte journalier
func (s *Store) IncrementHelped(ctx context.Context, id string) (int, error) {
	var dailyHelped int
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET daily_helped = daily_helped + 1, total_helped = total_helped + 1,
		     last_active = NOW(), updated_at = NOW()
		 WHERE id=$1 AND deleted_at IS NULL
		 RETURNING daily_helped`,
		id,
	).Scan(&dailyHelped)
	if err != nil {
		if noRows(err) {
			return 0, model.ErrUserNotFound
		}
		return 0, fmt.Errorf("impossible d'incrémenter les entraides: %w", err)
	}
	return dailyHelped, nil
}

// IncrementPublished incrémente les compteurs de publication
func (s *Store) IncrementPublished(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET daily_published = daily_published + 1, total_published = total_published + 1,
		     updated_at = NOW()
		 WHERE id=$1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("impossible d'incrémenter les publications: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// TopUsers classement des utilisateurs publics sur une métrique
func (s *Store) TopUsers(ctx context.Context, metric store.LeaderboardMetric, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var column string
	switch metric {
	case store.MetricTotalHelped, store.MetricCreditScore, store.MetricStreakDays, store.MetricTotalPublished:
		column = string(metric)
	default:
		return nil, fmt.Errorf("métrique de classement inconnue: %s", metric)
	}

	query := fmt.Sprintf(`
		WITH ranked_users AS (
			SELECT
				id, nickname, COALESCE(avatar_url,'') as avatar_url, credit_score,
				%s as score,
				ROW_NUMBER() OVER (ORDER BY %s DESC) as rank
			FROM users
			WHERE deleted_at IS NULL AND public_leaderboard = true
		)
		SELECT id, nickname, avatar_url, credit_score, score, rank
		FROM ranked_users
		ORDER BY rank
		LIMIT $1`, column, column)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("impossible de calculer le classement: %w", err)
	}
	defer rows.Close()

	var out []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.AvatarURL, &e.CreditScore, &e.Score, &e.Rank); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UsersDueRecovery utilisateurs sous maxScore dont la dernière récupération
// (ou à défaut l'inscription) date d'avant le seuil
func (s *Store) UsersDueRecovery(ctx context.Context, before time.Time, maxScore, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM users
		 WHERE deleted_at IS NULL AND credit_score < $1
		   AND COALESCE(last_recovery_at, created_at) <= $2
		 ORDER BY COALESCE(last_recovery_at, created_at) ASC
		 LIMIT $3`,
		maxScore, before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les récupérations dues: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SetLastRecovery horodate la dernière récupération RECOVERY_30D
func (s *Store) SetLastRecovery(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_recovery_at=$2, updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`,
		id, at,
	)
	return err
}
