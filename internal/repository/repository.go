package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SpaceRepository interface {
	List(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error)
	GetByID(ctx context.Context, id int64) (*domain.ParkingSpace, error)
	Create(ctx context.Context, space *domain.ParkingSpace) error
	Update(ctx context.Context, space *domain.ParkingSpace) error
	// SetState moves a space from one state to another; it fails with
	// ErrConflict when the space is not currently in from.
	SetState(ctx context.Context, id int64, from, to domain.SpaceState) (*domain.ParkingSpace, error)
	// Delete removes a space unless it is occupied.
	Delete(ctx context.Context, id int64) error
}

type SessionRepository interface {
	// Enter occupies the lowest-numbered available space of the given type
	// and opens a session on it in one atomic step.
	Enter(ctx context.Context, plate string, vehicleType domain.VehicleType, entryTime time.Time) (*domain.Session, error)
	// Close closes an active session, records its transaction and frees the
	// space in one atomic step. It fails with ErrNotFound when the session is
	// not active.
	Close(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	ListActive(ctx context.Context) ([]domain.Session, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Session, error)
}

type TransactionRepository interface {
	// List returns transactions with exit time at or after since, newest first.
	// A zero since returns everything.
	List(ctx context.Context, since time.Time) ([]domain.Transaction, error)
	GetBySessionID(ctx context.Context, sessionID int64) (*domain.Transaction, error)
}

type VehicleRepository interface {
	List(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, plate string) error
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// Store bundles every repository of one backend.
type Store struct {
	Spaces       SpaceRepository
	Sessions     SessionRepository
	Transactions TransactionRepository
	Vehicles     VehicleRepository
	Users        UserRepository
}

func NewPGStore(db *pgxpool.Pool) *Store {
	return &Store{
		Spaces:       NewSpaceRepository(db),
		Sessions:     NewSessionRepository(db),
		Transactions: NewTransactionRepository(db),
		Vehicles:     NewVehicleRepository(db),
		Users:        NewUserRepository(db),
	}
}

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the bundled schema files in name order. Every statement is
// idempotent, so running it on each start is safe.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
