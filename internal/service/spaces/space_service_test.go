package spaces

import (
	"context"
	"testing"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/kafka"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event kafka.ParkingEvent) {
	m.Called(ctx, event)
}

func newService(t *testing.T) (*SpaceService, *MockEventPublisher, *repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore().Store()
	events := &MockEventPublisher{}
	events.On("Emit", mock.Anything, mock.Anything).Return()
	return NewSpaceService(store.Spaces, events), events, store
}

func TestSpaceService_CreateSpace(t *testing.T) {
	service, events, _ := newService(t)
	ctx := context.Background()

	space, err := service.CreateSpace(ctx, CreateSpaceInput{Number: " A-01 ", Type: "regular"})

	require.NoError(t, err)
	assert.Equal(t, "A-01", space.Number)
	assert.Equal(t, domain.SpaceAvailable, space.State)
	assert.Equal(t, 1, space.Floor)
	assert.Equal(t, "A", space.Section)
	events.AssertCalled(t, "Emit", ctx, mock.MatchedBy(func(e kafka.ParkingEvent) bool {
		return e.Type == kafka.EventSpaceCreated && e.SpaceNumber == "A-01"
	}))
}

func TestSpaceService_CreateSpace_ValidationErrors(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateSpaceInput
	}{
		{name: "missing number", input: CreateSpaceInput{Type: "regular"}},
		{name: "unknown type", input: CreateSpaceInput{Number: "A-01", Type: "truck"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateSpace(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSpaceService_CreateSpace_DuplicateNumber(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	_, err := service.CreateSpace(ctx, CreateSpaceInput{Number: "A-01", Type: "regular"})
	require.NoError(t, err)
	_, err = service.CreateSpace(ctx, CreateSpaceInput{Number: "A-01", Type: "motorcycle"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSpaceService_SetState(t *testing.T) {
	service, _, store := newService(t)
	ctx := context.Background()

	space, err := service.CreateSpace(ctx, CreateSpaceInput{Number: "A-01", Type: "regular"})
	require.NoError(t, err)

	updated, err := service.SetState(ctx, space.ID, domain.SpaceMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.SpaceMaintenance, updated.State)

	_, err = service.SetState(ctx, space.ID, domain.SpaceOccupied)
	assert.ErrorIs(t, err, domain.ErrConflict)

	updated, err = service.SetState(ctx, space.ID, domain.SpaceAvailable)
	require.NoError(t, err)
	assert.Equal(t, domain.SpaceAvailable, updated.State)

	_, err = store.Sessions.Enter(ctx, "ABC123", domain.VehicleRegular, updated.CreatedAt)
	require.NoError(t, err)

	_, err = service.SetState(ctx, space.ID, domain.SpaceMaintenance)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = service.SetState(ctx, space.ID, domain.SpaceAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = service.SetState(ctx, space.ID, "broken")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSpaceService_DeleteOccupied(t *testing.T) {
	service, _, store := newService(t)
	ctx := context.Background()

	space, err := service.CreateSpace(ctx, CreateSpaceInput{Number: "A-01", Type: "regular"})
	require.NoError(t, err)
	_, err = store.Sessions.Enter(ctx, "ABC123", domain.VehicleRegular, space.CreatedAt)
	require.NoError(t, err)

	assert.ErrorIs(t, service.DeleteSpace(ctx, space.ID), domain.ErrConflict)
	assert.ErrorIs(t, service.DeleteSpace(ctx, 999), domain.ErrNotFound)
}

func TestSpaceService_UpdateSpace(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	space, err := service.CreateSpace(ctx, CreateSpaceInput{Number: "A-01", Type: "regular"})
	require.NoError(t, err)

	floor := 2
	kind := "accessible"
	updated, err := service.UpdateSpace(ctx, space.ID, UpdateSpaceInput{Floor: &floor, Type: &kind})

	require.NoError(t, err)
	assert.Equal(t, 2, updated.Floor)
	assert.Equal(t, domain.VehicleAccessible, updated.Type)
	assert.Equal(t, "A-01", updated.Number)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]domain.ParkingSpace{
		{State: domain.SpaceAvailable},
		{State: domain.SpaceOccupied},
		{State: domain.SpaceMaintenance},
	})

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 1, stats.Occupied)
	assert.Equal(t, 1, stats.Maintenance)
	assert.Equal(t, 33.3, stats.OccupancyPercent)
	assert.Equal(t, 0.0, Percent(0, 0))
}
