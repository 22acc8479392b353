package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitquest/internal/domain"
	"habitquest/internal/logger"
	"habitquest/internal/store"
)

// serializationRetries bounds how often a unit of work is replayed after a
// serialization failure before the caller sees a Conflict.
const serializationRetries = 3

// Store is the Postgres implementation of store.Store. Every unit of work
// runs in a SERIALIZABLE transaction.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	var err error
	for attempt := 1; attempt <= serializationRetries; attempt++ {
		err = s.runOnce(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
		logger.Debug("retrying serializable transaction", "attempt", attempt, "error", err)
	}
	return domain.Wrap(domain.KindConflict, "concurrent update, please retry", err)
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	pgTx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback(ctx) }()

	if err := fn(ctx, &Tx{tx: pgTx}); err != nil {
		return err
	}
	return pgTx.Commit(ctx)
}

// Tx exposes the repositories bound to one database transaction.
type Tx struct {
	tx pgx.Tx
}

var _ store.Tx = (*Tx)(nil)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

// translate maps driver errors onto domain error kinds.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.Wrap(domain.KindConflict, what+" already exists", err)
		case "23514":
			return domain.Wrap(domain.KindConflict, what+" violates a constraint", err)
		case "23503":
			return domain.Wrap(domain.KindNotFound, what+" references a missing row", err)
		}
	}
	return err
}

// expectOne turns an update or delete that touched no rows into NotFound.
func expectOne(tag pgconn.CommandTag, err error, what string) error {
	if err != nil {
		return translate(err, what)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("%s not found", what)
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(rowScanner) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
