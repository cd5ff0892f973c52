package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/duckytan/DotCircle/internal/credit"
	model "github.com/duckytan/DotCircle/internal/models"
)

// AppendEntry ajoute une écriture au registre et met à jour le score en cache
// dans la même transaction. Le verrou FOR UPDATE sérialise les écritures
// concurrentes d'un même utilisateur : balance_before/balance_after restent
// cohérents et la somme du registre égale toujours le cache.
func (s *Store) AppendEntry(ctx context.Context, userID string, delta int, reasonCode, reason, relatedType, relatedID, operator string) (*model.CreditEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("impossible d'ouvrir la transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var before int
	err = tx.QueryRow(ctx,
		`SELECT credit_score FROM users WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`,
		userID,
	).Scan(&before)
	if err != nil {
		if noRows(err) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("impossible de verrouiller l'utilisateur: %w", err)
	}

	after := before + delta
	entry := model.CreditEntry{
		UserID:        userID,
		Direction:     model.CreditAdd,
		Amount:        delta,
		ReasonCode:    reasonCode,
		Reason:        reason,
		BalanceBefore: before,
		BalanceAfter:  after,
		RelatedType:   relatedType,
		RelatedID:     relatedID,
		Operator:      operator,
		Timestamp:     time.Now(),
	}
	if delta < 0 {
		entry.Direction = model.CreditDeduct
		entry.Amount = -delta
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO credit_history(user_id, direction, amount, reason_code, reason,
		 balance_before, balance_after, related_type, related_id, operator, ts)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING id`,
		entry.UserID, entry.Direction, entry.Amount, entry.ReasonCode, entry.Reason,
		entry.BalanceBefore, entry.BalanceAfter, entry.RelatedType, entry.RelatedID,
		entry.Operator, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return nil, fmt.Errorf("impossible d'écrire dans le registre: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET credit_score=$2, credit_level=$3, updated_at=NOW() WHERE id=$1`,
		userID, after, string(credit.LevelForScore(after)),
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de mettre à jour le score en cache: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("impossible de valider l'écriture: %w", err)
	}
	return &entry, nil
}

// History lit le registre d'un utilisateur, écritures récentes en premier
func (s *Store) History(ctx context.Context, userID string, page, limit int) ([]model.CreditEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, direction, amount, reason_code, reason,
		 balance_before, balance_after, COALESCE(related_type,''), COALESCE(related_id,''), operator, ts
		 FROM credit_history
		 WHERE user_id=$1
		 ORDER BY ts DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de lire l'historique de crédit: %w", err)
	}
	defer rows.Close()

	var out []model.CreditEntry
	for rows.Next() {
		var e model.CreditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Direction, &e.Amount, &e.ReasonCode, &e.Reason,
			&e.BalanceBefore, &e.BalanceAfter, &e.RelatedType, &e.RelatedID, &e.Operator, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumEntries rejoue le registre : somme signée de toutes les écritures
func (s *Store) SumEntries(ctx context.Context, userID string) (int, error) {
	var sum int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN direction='DEDUCT' THEN -amount ELSE amount END), 0)
		 FROM credit_history WHERE user_id=$1`,
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("impossible de rejouer le registre: %w", err)
	}
	return sum, nil
}
