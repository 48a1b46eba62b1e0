package vehicles

import (
	"context"
	"strings"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"gopkg.in/guregu/null.v4"
)

type VehicleUseCase interface {
	ListVehicles(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, plate string) (*domain.Vehicle, error)
	CreateVehicle(ctx context.Context, input VehicleInput) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, plate string, input VehicleInput) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, plate string) error
}

type VehicleInput struct {
	Plate      string      `json:"plate"`
	Make       string      `json:"make"`
	Model      string      `json:"model"`
	Color      string      `json:"color"`
	Category   string      `json:"category"`
	OwnerName  null.String `json:"owner_name"`
	OwnerPhone null.String `json:"owner_phone"`
}

type VehicleService struct {
	repo repository.VehicleRepository
}

func NewVehicleService(repo repository.VehicleRepository) *VehicleService {
	return &VehicleService{repo: repo}
}

func (s *VehicleService) ListVehicles(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	if filter.Category != "" {
		if _, err := domain.ParseVehicleCategory(string(filter.Category)); err != nil {
			return nil, err
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

func (s *VehicleService) GetVehicle(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return s.repo.GetByPlate(ctx, domain.NormalizePlate(plate))
}

func (s *VehicleService) CreateVehicle(ctx context.Context, input VehicleInput) (*domain.Vehicle, error) {
	vehicle, err := buildVehicle(input.Plate, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// UpdateVehicle replaces the descriptive fields; the plate is the identity
// and cannot change.
func (s *VehicleService) UpdateVehicle(ctx context.Context, plate string, input VehicleInput) (*domain.Vehicle, error) {
	vehicle, err := buildVehicle(plate, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, plate string) error {
	return s.repo.Delete(ctx, domain.NormalizePlate(plate))
}

func buildVehicle(plate string, input VehicleInput) (*domain.Vehicle, error) {
	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.Validationf("plate is required")
	}
	category, err := domain.ParseVehicleCategory(input.Category)
	if err != nil {
		return nil, err
	}
	return &domain.Vehicle{
		Plate:     plate,
		Make:      strings.TrimSpace(input.Make),
		Model:     strings.TrimSpace(input.Model),
		Color:     strings.TrimSpace(input.Color),
		Category:  category,
		OwnerName: trimNull(input.OwnerName),
		Phone:     trimNull(input.OwnerPhone),
	}, nil
}

func trimNull(s null.String) null.String {
	v := strings.TrimSpace(s.String)
	return null.NewString(v, s.Valid && v != "")
}

var _ VehicleUseCase = (*VehicleService)(nil)
