package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGTransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PGTransactionRepository{db: db}
}

const transactionColumns = `id, session_id, plate, vehicle_type, space_id, space_number, entry_time, exit_time, elapsed_seconds, amount_cents, currency, payment_method`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := row.Scan(&t.ID, &t.SessionID, &t.Plate, &t.VehicleType, &t.SpaceID, &t.SpaceNumber, &t.EntryTime, &t.ExitTime, &t.ElapsedSec, &t.AmountCents, &t.Currency, &t.PaymentMethod); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTransactionRepository) List(ctx context.Context, since time.Time) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE exit_time >= $1 ORDER BY exit_time DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *PGTransactionRepository) GetBySessionID(ctx context.Context, sessionID int64) (*domain.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE session_id=$1`, sessionID))
}

var _ TransactionRepository = (*PGTransactionRepository)(nil)
