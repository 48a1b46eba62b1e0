package spaces

import (
	"context"
	"strings"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/kafka"
	"github.com/Domenick1991/parkinglot/internal/repository"
)

type SpaceUseCase interface {
	ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error)
	GetSpace(ctx context.Context, id int64) (*domain.ParkingSpace, error)
	CreateSpace(ctx context.Context, input CreateSpaceInput) (*domain.ParkingSpace, error)
	UpdateSpace(ctx context.Context, id int64, input UpdateSpaceInput) (*domain.ParkingSpace, error)
	SetState(ctx context.Context, id int64, state domain.SpaceState) (*domain.ParkingSpace, error)
	DeleteSpace(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*domain.SpaceStats, error)
}

type EventPublisher interface {
	Emit(ctx context.Context, event kafka.ParkingEvent)
}

type CreateSpaceInput struct {
	Number  string `json:"number"`
	Type    string `json:"type"`
	Floor   int    `json:"floor"`
	Section string `json:"section"`
}

// UpdateSpaceInput is a partial update; nil fields keep their value.
type UpdateSpaceInput struct {
	Number  *string `json:"number"`
	Type    *string `json:"type"`
	Floor   *int    `json:"floor"`
	Section *string `json:"section"`
}

type SpaceService struct {
	repo   repository.SpaceRepository
	events EventPublisher
}

func NewSpaceService(repo repository.SpaceRepository, events EventPublisher) *SpaceService {
	return &SpaceService{repo: repo, events: events}
}

func (s *SpaceService) ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error) {
	if filter.State != "" {
		if _, err := domain.ParseSpaceState(string(filter.State)); err != nil {
			return nil, err
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Validationf("unknown vehicle type %q", filter.Type)
	}
	return s.repo.List(ctx, filter)
}

func (s *SpaceService) GetSpace(ctx context.Context, id int64) (*domain.ParkingSpace, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SpaceService) CreateSpace(ctx context.Context, input CreateSpaceInput) (*domain.ParkingSpace, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, domain.Validationf("space number is required")
	}
	vehicleType, err := domain.ParseVehicleType(input.Type)
	if err != nil {
		return nil, err
	}

	space := &domain.ParkingSpace{
		Number:  number,
		Type:    vehicleType,
		State:   domain.SpaceAvailable,
		Floor:   input.Floor,
		Section: strings.TrimSpace(input.Section),
	}
	if space.Floor == 0 {
		space.Floor = 1
	}
	if space.Section == "" {
		space.Section = "A"
	}

	if err := s.repo.Create(ctx, space); err != nil {
		return nil, err
	}
	s.emit(ctx, kafka.EventSpaceCreated, space)
	return space, nil
}

func (s *SpaceService) UpdateSpace(ctx context.Context, id int64, input UpdateSpaceInput) (*domain.ParkingSpace, error) {
	space, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Number != nil {
		number := strings.TrimSpace(*input.Number)
		if number == "" {
			return nil, domain.Validationf("space number is required")
		}
		space.Number = number
	}
	if input.Type != nil {
		vehicleType, err := domain.ParseVehicleType(*input.Type)
		if err != nil {
			return nil, err
		}
		space.Type = vehicleType
	}
	if input.Floor != nil {
		space.Floor = *input.Floor
	}
	if input.Section != nil {
		space.Section = strings.TrimSpace(*input.Section)
	}

	if err := s.repo.Update(ctx, space); err != nil {
		return nil, err
	}
	s.emit(ctx, kafka.EventSpaceUpdated, space)
	return space, nil
}

// SetState only toggles maintenance. Occupancy is owned by session entry and
// exit, so any request to set or leave occupied is a conflict.
func (s *SpaceService) SetState(ctx context.Context, id int64, state domain.SpaceState) (*domain.ParkingSpace, error) {
	if _, err := domain.ParseSpaceState(string(state)); err != nil {
		return nil, err
	}

	var from domain.SpaceState
	switch state {
	case domain.SpaceMaintenance:
		from = domain.SpaceAvailable
	case domain.SpaceAvailable:
		from = domain.SpaceMaintenance
	default:
		return nil, domain.Conflictf("spaces become occupied only through vehicle entry")
	}

	space, err := s.repo.SetState(ctx, id, from, state)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, kafka.EventSpaceStateChanged, space)
	return space, nil
}

func (s *SpaceService) DeleteSpace(ctx context.Context, id int64) error {
	space, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if space.State == domain.SpaceOccupied {
		return domain.Conflictf("space %s is occupied", space.Number)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, kafka.EventSpaceDeleted, space)
	return nil
}

func (s *SpaceService) Stats(ctx context.Context) (*domain.SpaceStats, error) {
	spaces, err := s.repo.List(ctx, domain.SpaceFilter{})
	if err != nil {
		return nil, err
	}
	return ComputeStats(spaces), nil
}

// ComputeStats counts spaces per state. Occupancy is occupied over total.
func ComputeStats(spaces []domain.ParkingSpace) *domain.SpaceStats {
	stats := &domain.SpaceStats{Total: len(spaces)}
	for _, sp := range spaces {
		switch sp.State {
		case domain.SpaceAvailable:
			stats.Available++
		case domain.SpaceOccupied:
			stats.Occupied++
		case domain.SpaceMaintenance:
			stats.Maintenance++
		}
	}
	stats.OccupancyPercent = Percent(stats.Occupied, stats.Total)
	return stats
}

// Percent returns part/total*100 rounded to one decimal, or 0 for an empty total.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(part)*1000/float64(total)+0.5)) / 10
}

func (s *SpaceService) emit(ctx context.Context, eventType string, space *domain.ParkingSpace) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, kafka.ParkingEvent{
		Type:        eventType,
		SpaceID:     space.ID,
		SpaceNumber: space.Number,
		SpaceState:  string(space.State),
		VehicleType: string(space.Type),
	})
}

var _ SpaceUseCase = (*SpaceService)(nil)
