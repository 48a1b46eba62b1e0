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

type PGVehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

const vehicleColumns = `plate, make, model, color, category, owner_name, owner_phone, created_at, updated_at`

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.Plate, &v.Make, &v.Model, &v.Color, &v.Category, &v.OwnerName, &v.Phone, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGVehicleRepository) List(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(plate ILIKE $%d OR make ILIKE $%d OR model ILIKE $%d OR owner_name ILIKE $%d)", n, n, n, n))
	}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY plate`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *PGVehicleRepository) GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE plate=$1`, plate))
}

func (r *PGVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `INSERT INTO vehicles (plate, make, model, color, category, owner_name, owner_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`, v.Plate, v.Make, v.Model, v.Color, v.Category, v.OwnerName, v.Phone).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.Conflictf("vehicle %s already exists", v.Plate)
	}
	return err
}

func (r *PGVehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `UPDATE vehicles SET make=$2, model=$3, color=$4, category=$5, owner_name=$6, owner_phone=$7, updated_at=now()
		WHERE plate=$1
		RETURNING created_at, updated_at`, v.Plate, v.Make, v.Model, v.Color, v.Category, v.OwnerName, v.Phone).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *PGVehicleRepository) Delete(ctx context.Context, plate string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE plate=$1`, plate)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGVehicleRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM vehicles`).Scan(&n)
	return n, err
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
