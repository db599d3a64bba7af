package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./tx.go -destination=./mocks/tx_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"

	"hotel/config"
	"hotel/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// TxFunc runs inside an open transaction. Returning an error rolls the transaction back.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

type Transactor interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

type transactorImpl struct {
	db            *sqlx.DB
	lockTimeoutMs int
}

func NewTransactor(conn *Connection, cfg *config.Config) Transactor {
	return &transactorImpl{
		db:            conn.Write,
		lockTimeoutMs: cfg.Booking.LockTimeoutMs,
	}
}

// WithinTx opens a read-committed transaction on the write connection, bounds how long any
// row lock may be waited for, and commits when fn succeeds.
func (t *transactorImpl) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")

		return failure.StorageFailure(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if t.lockTimeoutMs > 0 {
		// SET does not accept bind parameters.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", t.lockTimeoutMs)); err != nil {
			_ = tx.Rollback()

			return failure.StorageFailure(fmt.Errorf("failed to set lock timeout: %w", err))
		}
	}

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")

		return failure.StorageFailure(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}
