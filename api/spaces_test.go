package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSpaceUseCase is a mock implementation of spaces.SpaceUseCase
type MockSpaceUseCase struct {
	mock.Mock
}

func (m *MockSpaceUseCase) ListSpaces(ctx context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ParkingSpace), args.Error(1)
}

func (m *MockSpaceUseCase) GetSpace(ctx context.Context, id int64) (*domain.ParkingSpace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpace), args.Error(1)
}

func (m *MockSpaceUseCase) CreateSpace(ctx context.Context, input spaces.CreateSpaceInput) (*domain.ParkingSpace, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpace), args.Error(1)
}

func (m *MockSpaceUseCase) UpdateSpace(ctx context.Context, id int64, input spaces.UpdateSpaceInput) (*domain.ParkingSpace, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpace), args.Error(1)
}

func (m *MockSpaceUseCase) SetState(ctx context.Context, id int64, state domain.SpaceState) (*domain.ParkingSpace, error) {
	args := m.Called(ctx, id, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSpace), args.Error(1)
}

func (m *MockSpaceUseCase) DeleteSpace(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSpaceUseCase) Stats(ctx context.Context) (*domain.SpaceStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpaceStats), args.Error(1)
}

func TestSpaceHandler_list(t *testing.T) {
	mockService := &MockSpaceUseCase{}
	handler := NewSpaceHandler(mockService)

	c, w := newTestContext("GET", "/api/spaces?state=available&type=regular&section=B", nil)
	filter := domain.SpaceFilter{State: domain.SpaceAvailable, Type: domain.VehicleRegular, Section: "B"}
	mockService.On("ListSpaces", c.Request.Context(), filter).Return([]domain.ParkingSpace{
		{ID: 1, Number: "B-01", Type: domain.VehicleRegular, State: domain.SpaceAvailable},
	}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.ParkingSpace
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "B-01", response[0].Number)
	mockService.AssertExpectations(t)
}

func TestSpaceHandler_create_Validation(t *testing.T) {
	mockService := &MockSpaceUseCase{}
	handler := NewSpaceHandler(mockService)

	input := spaces.CreateSpaceInput{Number: "A-01", Type: "truck"}
	c, w := newTestContext("POST", "/api/spaces", input)
	mockService.On("CreateSpace", c.Request.Context(), input).Return(nil, domain.Validationf("unknown vehicle type %q", "truck"))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown vehicle type")
}

func TestSpaceHandler_setState_Occupied(t *testing.T) {
	mockService := &MockSpaceUseCase{}
	handler := NewSpaceHandler(mockService)

	c, w := newTestContext("PATCH", "/api/spaces/3/state", setStateRequest{State: "occupied"})
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	mockService.On("SetState", c.Request.Context(), int64(3), domain.SpaceOccupied).
		Return(nil, domain.Conflictf("spaces become occupied only through vehicle entry"))

	handler.setState(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSpaceHandler_delete(t *testing.T) {
	mockService := &MockSpaceUseCase{}
	handler := NewSpaceHandler(mockService)

	c, _ := newTestContext("DELETE", "/api/spaces/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	mockService.On("DeleteSpace", c.Request.Context(), int64(3)).Return(nil)

	handler.delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	mockService.AssertExpectations(t)
}

func TestSpaceHandler_get_NotFound(t *testing.T) {
	mockService := &MockSpaceUseCase{}
	handler := NewSpaceHandler(mockService)

	c, w := newTestContext("GET", "/api/spaces/8", nil)
	c.Params = gin.Params{{Key: "id", Value: "8"}}
	mockService.On("GetSpace", c.Request.Context(), int64(8)).Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
