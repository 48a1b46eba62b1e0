package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGSpaceRepository struct {
	db *pgxpool.Pool
}

func NewSpaceRepository(db *pgxpool.Pool) SpaceRepository {
	return &PGSpaceRepository{db: db}
}

const spaceColumns = `id, number, type, state, floor, section, created_at, updated_at`

func scanSpace(row pgx.Row) (*domain.ParkingSpace, error) {
	var s domain.ParkingSpace
	if err := row.Scan(&s.ID, &s.Number, &s.Type, &s.State, &s.Floor, &s.Section, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSpaceRepository) List(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error) {
	var (
		where []string
		args  []any
	)
	if filter.State != "" {
		args = append(args, filter.State)
		where = append(where, fmt.Sprintf("state=$%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		where = append(where, fmt.Sprintf("section=$%d", len(args)))
	}
	query := `SELECT ` + spaceColumns + ` FROM spaces`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spaces := make([]domain.ParkingSpace, 0)
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, *s)
	}
	return spaces, rows.Err()
}

func (r *PGSpaceRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingSpace, error) {
	return scanSpace(r.db.QueryRow(ctx, `SELECT `+spaceColumns+` FROM spaces WHERE id=$1`, id))
}

func (r *PGSpaceRepository) Create(ctx context.Context, space *domain.ParkingSpace) error {
	err := r.db.QueryRow(ctx, `INSERT INTO spaces (number, type, state, floor, section)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`, space.Number, space.Type, space.State, space.Floor, space.Section).
		Scan(&space.ID, &space.CreatedAt, &space.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Conflictf("space %s already exists", space.Number)
	}
	return err
}

func (r *PGSpaceRepository) Update(ctx context.Context, space *domain.ParkingSpace) error {
	err := r.db.QueryRow(ctx, `UPDATE spaces SET number=$2, type=$3, floor=$4, section=$5, updated_at=now()
		WHERE id=$1 AND (type=$3 OR state <> 'occupied')
		RETURNING state, created_at, updated_at`, space.ID, space.Number, space.Type, space.Floor, space.Section).
		Scan(&space.State, &space.CreatedAt, &space.UpdatedAt)
	switch {
	case isUniqueViolation(err):
		return domain.Conflictf("space %s already exists", space.Number)
	case errors.Is(err, pgx.ErrNoRows):
		if _, getErr := r.GetByID(ctx, space.ID); getErr != nil {
			return getErr
		}
		return domain.Conflictf("cannot change the type of occupied space %d", space.ID)
	}
	return err
}

func (r *PGSpaceRepository) SetState(ctx context.Context, id int64, from, to domain.SpaceState) (*domain.ParkingSpace, error) {
	space, err := scanSpace(r.db.QueryRow(ctx, `UPDATE spaces SET state=$3, updated_at=now()
		WHERE id=$1 AND state=$2
		RETURNING `+spaceColumns, id, from, to))
	if errors.Is(err, domain.ErrNotFound) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.Conflictf("space %s is %s, not %s", current.Number, current.State, from)
	}
	return space, err
}

func (r *PGSpaceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM spaces WHERE id=$1 AND state <> 'occupied'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.Conflictf("space %d is occupied", id)
	}
	return nil
}

var _ SpaceRepository = (*PGSpaceRepository)(nil)
