package postgres

import (
	"context"
	"fmt"
	"time"

	model "github.com/duckytan/DotCircle/internal/models"
	"github.com/duckytan/DotCircle/internal/scanner"
	"github.com/duckytan/DotCircle/internal/store"
)

const packageColumns = `id, creator_id, type, COALESCE(gift_url,''), COALESCE(gift_id,''),
	COALESCE(image_file_id,''), COALESCE(image_url,''), status, help_count, max_help,
	contract_enabled, exposure_score, cancelled_at, COALESCE(cancelled_by,''),
	COALESCE(cancel_reason,''), created_at, updated_at, expire_at`

// CreatePackage insère un nouveau paquet
func (s *Store) CreatePackage(ctx context.Context, pkg *model.GiftPackage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO packages(id, creator_id, type, gift_url, gift_id, image_file_id, image_url,
		 status, help_count, max_help, contract_enabled, exposure_score, created_at, updated_at, expire_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		pkg.ID, pkg.CreatorID, pkg.Type, pkg.GiftURL, pkg.GiftID, pkg.ImageFileID, pkg.ImageURL,
		pkg.Status, pkg.HelpCount, pkg.MaxHelp, pkg.Contract.Enabled, pkg.ExposureScore,
		pkg.CreatedAt, pkg.UpdatedAt, pkg.ExpireAt,
	)
	if err != nil {
		return fmt.Errorf("impossible de créer le paquet: %w", err)
	}
	return nil
}

// GetPackage récupère un paquet par son ID
func (s *Store) GetPackage(ctx context.Context, id string) (*model.GiftPackage, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id=$1`, id)

	pkg, err := scanner.ScanGiftPackage(row)
	if err != nil {
		if noRows(err) {
			return nil, model.ErrPackageNotFound
		}
		return nil, fmt.Errorf("impossible de lire le paquet: %w", err)
	}
	return pkg, nil
}

// ListPackages liste les paquets selon les filtres, triés par exposition ou date
func (s *Store) ListPackages(ctx context.Context, f store.ListFilter) ([]model.GiftPackage, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	query := `SELECT ` + packageColumns + ` FROM packages WHERE 1=1`
	args := []interface{}{}

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type=$%d", len(args))
	}
	if f.SortBy == "time" {
		query += " ORDER BY created_at DESC"
	} else {
		query += " ORDER BY exposure_score DESC"
	}
	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les paquets: %w", err)
	}
	defer rows.Close()

	var out []model.GiftPackage
	for rows.Next() {
		pkg, err := scanner.ScanGiftPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pkg)
	}
	return out, rows.Err()
}

// ListByCreator liste les paquets d'un créateur
func (s *Store) ListByCreator(ctx context.Context, creatorID string, status model.PackageStatus, page, limit int) ([]model.GiftPackage, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	query := `SELECT ` + packageColumns + ` FROM packages WHERE creator_id=$1`
	args := []interface{}{creatorID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les paquets du créateur: %w", err)
	}
	defer rows.Close()

	var out []model.GiftPackage
	for rows.Next() {
		pkg, err := scanner.ScanGiftPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pkg)
	}
	return out, rows.Err()
}

// ActiveGiftExists vérifie si un gift_id est déjà porté par un paquet actif ou en attente
func (s *Store) ActiveGiftExists(ctx context.Context, giftID string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM packages WHERE gift_id=$1 AND status IN ('active','pending')`,
		giftID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("impossible de vérifier le doublon: %w", err)
	}
	return count > 0, nil
}

// ClaimSlot réserve une place sur le paquet. L'UPDATE est conditionné sur le
// compte observé : si un concurrent a pris la place entre la lecture et
// l'écriture, aucune ligne n'est touchée et l'appelant relit. L'insertion du
// help_record dans la même transaction est clôturée par la contrainte unique
// (package_id, helper_id) : une reprise du même helper annule tout.
func (s *Store) ClaimSlot(ctx context.Context, packageID string, expectedCount int, rec model.HelpRecord) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("impossible d'ouvrir la transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE packages
		 SET help_count = help_count + 1,
		     status = CASE WHEN help_count + 1 >= max_help THEN 'completed' ELSE status END,
		     updated_at = NOW()
		 WHERE id=$1 AND status='active' AND help_count=$2`,
		packageID, expectedCount,
	)
	if err != nil {
		return false, fmt.Errorf("impossible d'incrémenter le compteur: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Un concurrent a gagné la course, ou le statut a changé
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO help_records(package_id, creator_id, helper_id, contract_enabled,
		 fulfilled, stats_applied, credit_applied, credit_granted, helped_at)
		 VALUES($1,$2,$3,$4,false,false,false,false,$5)`,
		packageID, rec.CreatorID, rec.HelperID, rec.ContractEnabled, rec.HelpedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, model.ErrAlreadyHelped
		}
		return false, fmt.Errorf("impossible de créer le help_record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("impossible de valider la réservation: %w", err)
	}
	return true, nil
}

// GetHelpRecord retourne le help_record (packageId, helperId), nil s'il n'existe pas
func (s *Store) GetHelpRecord(ctx context.Context, packageID, helperID string) (*model.HelpRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, package_id, creator_id, helper_id, contract_enabled, fulfilled,
		 fulfilled_at, stats_applied, credit_applied, credit_granted, helped_at
		 FROM help_records WHERE package_id=$1 AND helper_id=$2`,
		packageID, helperID,
	)
	rec, err := scanner.ScanHelpRecord(row)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("impossible de lire le help_record: %w", err)
	}
	return rec, nil
}

// ListHelpers retourne les entraides d'un paquet avec pseudo et avatar
func (s *Store) ListHelpers(ctx context.Context, packageID string) ([]model.HelpRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT h.id, h.package_id, h.creator_id, h.helper_id, h.contract_enabled, h.fulfilled,
		 h.fulfilled_at, h.stats_applied, h.credit_applied, h.credit_granted, h.helped_at,
		 u.nickname, COALESCE(u.avatar_url,'')
		 FROM help_records h
		 INNER JOIN users u ON u.id = h.helper_id
		 WHERE h.package_id=$1
		 ORDER BY h.helped_at ASC`,
		packageID,
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les helpers: %w", err)
	}
	defer rows.Close()

	var out []model.HelpRecord
	for rows.Next() {
		rec, err := scanner.ScanHelpRecordWithHelper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// MarkStatsApplied marque les compteurs du helper comme incrémentés
func (s *Store) MarkStatsApplied(ctx context.Context, packageID, helperID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE help_records SET stats_applied=true WHERE package_id=$1 AND helper_id=$2`,
		packageID, helperID,
	)
	return err
}

// MarkCreditApplied marque la décision de crédit comme prise
func (s *Store) MarkCreditApplied(ctx context.Context, packageID, helperID string, granted bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE help_records SET credit_applied=true, credit_granted=$3 WHERE package_id=$1 AND helper_id=$2`,
		packageID, helperID, granted,
	)
	return err
}

// FulfillContract marque le contrat d'une entraide comme honoré (une seule fois)
func (s *Store) FulfillContract(ctx context.Context, packageID, helperID string, at time.Time) error {
	var enabled, fulfilled bool
	err := s.pool.QueryRow(ctx,
		`SELECT contract_enabled, fulfilled FROM help_records WHERE package_id=$1 AND helper_id=$2`,
		packageID, helperID,
	).Scan(&enabled, &fulfilled)
	if err != nil {
		if noRows(err) {
			return model.ErrPackageNotFound
		}
		return fmt.Errorf("impossible de lire le contrat: %w", err)
	}
	if !enabled {
		return model.ErrContractDisabled
	}
	if fulfilled {
		return model.ErrContractFulfilled
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE help_records SET fulfilled=true, fulfilled_at=$3
		 WHERE package_id=$1 AND helper_id=$2 AND fulfilled=false`,
		packageID, helperID, at,
	)
	if err != nil {
		return fmt.Errorf("impossible de marquer le contrat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrContractFulfilled
	}
	return nil
}

// CancelPackage annule un paquet et trace qui/pourquoi
func (s *Store) CancelPackage(ctx context.Context, packageID, cancelledBy, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE packages
		 SET status='cancelled', cancelled_at=NOW(), cancelled_by=$2, cancel_reason=$3, updated_at=NOW()
		 WHERE id=$1 AND status IN ('active','pending')`,
		packageID, cancelledBy, reason,
	)
	if err != nil {
		return fmt.Errorf("impossible d'annuler le paquet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyCompleted
	}
	return nil
}

// SetStatus bascule le statut de from vers to (décision de modération externe)
func (s *Store) SetStatus(ctx context.Context, packageID string, from, to model.PackageStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE packages SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2`,
		packageID, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("impossible de changer le statut: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustHelpCount corrige le compteur (conditionné sur le compte observé) et
// trace la correction dans help_adjustments
func (s *Store) AdjustHelpCount(ctx context.Context, packageID string, expectedCount, newCount int, adj model.HelpAdjustment) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("impossible d'ouvrir la transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE packages
		 SET help_count=$3,
		     status = CASE WHEN $3 >= max_help THEN 'completed' ELSE status END,
		     updated_at=NOW()
		 WHERE id=$1 AND help_count=$2`,
		packageID, expectedCount, newCount,
	)
	if err != nil {
		return false, fmt.Errorf("impossible de corriger le compteur: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO help_adjustments(package_id, from_count, to_count, reason, adjusted_by, adjusted_at)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		packageID, adj.FromCount, adj.ToCount, adj.Reason, adj.AdjustedBy, adj.AdjustedAt,
	)
	if err != nil {
		return false, fmt.Errorf("impossible de tracer la correction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("impossible de valider la correction: %w", err)
	}
	return true, nil
}

// ListAdjustments historique des corrections d'un paquet
func (s *Store) ListAdjustments(ctx context.Context, packageID string) ([]model.HelpAdjustment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, package_id, from_count, to_count, reason, adjusted_by, adjusted_at
		 FROM help_adjustments WHERE package_id=$1 ORDER BY adjusted_at ASC`,
		packageID,
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les corrections: %w", err)
	}
	defer rows.Close()

	var out []model.HelpAdjustment
	for rows.Next() {
		var a model.HelpAdjustment
		if err := rows.Scan(&a.ID, &a.PackageID, &a.FromCount, &a.ToCount, &a.Reason, &a.AdjustedBy, &a.AdjustedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PendingSideEffects help_records dont les effets secondaires (stats/crédit)
// n'ont pas encore été appliqués — cible du worker de réparation
func (s *Store) PendingSideEffects(ctx context.Context, olderThan time.Time, limit int) ([]model.HelpRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, package_id, creator_id, helper_id, contract_enabled, fulfilled,
		 fulfilled_at, stats_applied, credit_applied, credit_granted, helped_at
		 FROM help_records
		 WHERE (stats_applied=false OR credit_applied=false) AND helped_at <= $1
		 ORDER BY helped_at ASC
		 LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("impossible de lister les effets en attente: %w", err)
	}
	defer rows.Close()

	var out []model.HelpRecord
	for rows.Next() {
		rec, err := scanner.ScanHelpRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// ExpirePackages annule les paquets dont le TTL est dépassé
func (s *Store) ExpirePackages(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE packages
		 SET status='cancelled', cancelled_at=$1, cancelled_by='system', cancel_reason='expired', updated_at=$1
		 WHERE status IN ('active','pending') AND expire_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("impossible d'expirer les paquets: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
