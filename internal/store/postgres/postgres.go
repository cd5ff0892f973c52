// Package postgres implémente store.* sur PostgreSQL via pgx.
//
// Les deux points chauds de concurrence sont traités ici :
//   - ClaimSlot : UPDATE conditionné sur le help_count observé + insertion du
//     help_record sous contrainte unique, dans une même transaction ;
//   - RolloverDaily : UPDATE conditionné sur la date journalière stockée.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duckytan/DotCircle/internal/store"
)

// Code SQLSTATE d'une violation de contrainte unique
const uniqueViolation = "23505"

var (
	_ store.PackageStore = (*Store)(nil)
	_ store.UserStore    = (*Store)(nil)
	_ store.LedgerStore  = (*Store)(nil)
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
