package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGSessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) SessionRepository {
	return &PGSessionRepository{db: db}
}

const sessionColumns = `id, plate, vehicle_type, space_id, space_number, entry_time, status`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.Plate, &s.VehicleType, &s.SpaceID, &s.SpaceNumber, &s.EntryTime, &s.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSessionRepository) Enter(ctx context.Context, plate string, vehicleType domain.VehicleType, entryTime time.Time) (*domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var parked bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE plate=$1 AND status='active')`, plate).Scan(&parked); err != nil {
		return nil, err
	}
	if parked {
		return nil, domain.Conflictf("vehicle %s is already parked", plate)
	}

	// SKIP LOCKED lets concurrent entries pick different spaces instead of
	// queueing on the same row.
	session := &domain.Session{
		Plate:       plate,
		VehicleType: vehicleType,
		EntryTime:   entryTime,
		Status:      domain.SessionActive,
	}
	err = tx.QueryRow(ctx, `SELECT id, number FROM spaces
		WHERE state='available' AND type=$1
		ORDER BY number
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, vehicleType).Scan(&session.SpaceID, &session.SpaceNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoCapacity
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE spaces SET state='occupied', updated_at=now() WHERE id=$1`, session.SpaceID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO vehicles (plate) VALUES ($1) ON CONFLICT (plate) DO NOTHING`, plate); err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `INSERT INTO sessions (plate, vehicle_type, space_id, space_number, entry_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`, session.Plate, session.VehicleType, session.SpaceID, session.SpaceNumber, session.EntryTime, session.Status).
		Scan(&session.ID)
	if isUniqueViolation(err) {
		return nil, domain.Conflictf("vehicle %s is already parked", plate)
	}
	if err != nil {
		return nil, err
	}

	return session, tx.Commit(ctx)
}

func (r *PGSessionRepository) Close(ctx context.Context, txn *domain.Transaction) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var spaceID int64
	err = tx.QueryRow(ctx, `UPDATE sessions SET status='closed', exit_time=$2
		WHERE id=$1 AND status='active'
		RETURNING space_id`, txn.SessionID, txn.ExitTime).Scan(&spaceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("no active session %d", txn.SessionID)
	}
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `INSERT INTO transactions
		(session_id, plate, vehicle_type, space_id, space_number, entry_time, exit_time, elapsed_seconds, amount_cents, currency, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		txn.SessionID, txn.Plate, txn.VehicleType, spaceID, txn.SpaceNumber, txn.EntryTime, txn.ExitTime,
		txn.ElapsedSec, txn.AmountCents, txn.Currency, txn.PaymentMethod).Scan(&txn.ID)
	if isUniqueViolation(err) {
		return domain.NotFoundf("session %d is already closed", txn.SessionID)
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE spaces SET state='available', updated_at=now() WHERE id=$1`, spaceID); err != nil {
		return err
	}
	txn.SpaceID = spaceID
	return tx.Commit(ctx)
}

func (r *PGSessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	return scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id=$1`, id))
}

func (r *PGSessionRepository) ListActive(ctx context.Context) ([]domain.Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE status='active' ORDER BY entry_time`)
}

func (r *PGSessionRepository) ListRecent(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 10
	}
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY entry_time DESC LIMIT $1`, limit)
}

func (r *PGSessionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

var _ SessionRepository = (*PGSessionRepository)(nil)
