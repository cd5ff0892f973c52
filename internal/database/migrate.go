package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applique le schéma au démarrage. Les instructions sont idempotentes
// (IF NOT EXISTS) et exécutées dans l'ordre.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			external_id TEXT UNIQUE NOT NULL,
			nickname TEXT NOT NULL,
			avatar_url TEXT,
			is_admin BOOLEAN NOT NULL DEFAULT false,
			credit_score INT NOT NULL DEFAULT 0,
			credit_level TEXT NOT NULL DEFAULT 'BANNED',
			daily_date TEXT NOT NULL,
			daily_helped INT NOT NULL DEFAULT 0,
			daily_published INT NOT NULL DEFAULT 0,
			daily_quota INT NOT NULL DEFAULT 0,
			total_helped INT NOT NULL DEFAULT 0,
			total_published INT NOT NULL DEFAULT 0,
			streak_days INT NOT NULL DEFAULT 1,
			last_active TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_recovery_at TIMESTAMPTZ,
			achievements TEXT[] NOT NULL DEFAULT '{}',
			public_leaderboard BOOLEAN NOT NULL DEFAULT true,
			enable_contract BOOLEAN NOT NULL DEFAULT true,
			allow_notification BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			token TEXT UNIQUE NOT NULL,
			ip_address TEXT,
			user_agent TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			created_by TEXT,
			deleted_at TIMESTAMPTZ,
			deleted_by TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS packages (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			gift_url TEXT,
			gift_id TEXT,
			image_file_id TEXT,
			image_url TEXT,
			status TEXT NOT NULL,
			help_count INT NOT NULL DEFAULT 0,
			max_help INT NOT NULL,
			contract_enabled BOOLEAN NOT NULL DEFAULT true,
			exposure_score INT NOT NULL DEFAULT 0,
			cancelled_at TIMESTAMPTZ,
			cancelled_by TEXT,
			cancel_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expire_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS help_records (
			id BIGSERIAL PRIMARY KEY,
			package_id TEXT NOT NULL REFERENCES packages(id),
			creator_id TEXT NOT NULL,
			helper_id TEXT NOT NULL REFERENCES users(id),
			contract_enabled BOOLEAN NOT NULL DEFAULT false,
			fulfilled BOOLEAN NOT NULL DEFAULT false,
			fulfilled_at TIMESTAMPTZ,
			stats_applied BOOLEAN NOT NULL DEFAULT false,
			credit_applied BOOLEAN NOT NULL DEFAULT false,
			credit_granted BOOLEAN NOT NULL DEFAULT false,
			helped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (package_id, helper_id)
		);`,
		`CREATE TABLE IF NOT EXISTS help_adjustments (
			id BIGSERIAL PRIMARY KEY,
			package_id TEXT NOT NULL REFERENCES packages(id),
			from_count INT NOT NULL,
			to_count INT NOT NULL,
			reason TEXT,
			adjusted_by TEXT NOT NULL,
			adjusted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS credit_history (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			direction TEXT NOT NULL,
			amount INT NOT NULL,
			reason_code TEXT NOT NULL,
			reason TEXT,
			balance_before INT NOT NULL,
			balance_after INT NOT NULL,
			related_type TEXT,
			related_id TEXT,
			operator TEXT NOT NULL DEFAULT 'system',
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_packages_status_exposure ON packages(status, exposure_score DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_packages_status_created ON packages(status, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_packages_expire ON packages(expire_at);`,
		`CREATE INDEX IF NOT EXISTS idx_packages_gift ON packages(gift_id) WHERE gift_id IS NOT NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_help_records_pending ON help_records(helped_at) WHERE stats_applied = false OR credit_applied = false;`,
		`CREATE INDEX IF NOT EXISTS idx_credit_history_user_ts ON credit_history(user_id, ts DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token) WHERE is_active = true;`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
