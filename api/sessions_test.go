package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSessionUseCase is a mock implementation of sessions.SessionUseCase
type MockSessionUseCase struct {
	mock.Mock
}

func (m *MockSessionUseCase) Enter(ctx context.Context, input sessions.EnterInput) (*domain.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionUseCase) Exit(ctx context.Context, sessionID int64, input sessions.ExitInput) (*domain.Receipt, error) {
	args := m.Called(ctx, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockSessionUseCase) ListActive(ctx context.Context, filter domain.ActiveFilter) ([]domain.ActiveSession, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ActiveSession), args.Error(1)
}

func (m *MockSessionUseCase) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func newTestContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestSessionHandler_enter(t *testing.T) {
	mockService := &MockSessionUseCase{}
	handler := NewSessionHandler(mockService)

	input := sessions.EnterInput{Plate: "ABC123", VehicleType: "regular"}
	c, w := newTestContext("POST", "/api/sessions/enter", input)

	session := &domain.Session{ID: 1, Plate: "ABC123", VehicleType: domain.VehicleRegular, SpaceNumber: "A-01", Status: domain.SessionActive}
	mockService.On("Enter", c.Request.Context(), input).Return(session, nil)

	handler.enter(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Session
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "A-01", response.SpaceNumber)
	mockService.AssertExpectations(t)
}

func TestSessionHandler_enter_NoCapacity(t *testing.T) {
	mockService := &MockSessionUseCase{}
	handler := NewSessionHandler(mockService)

	input := sessions.EnterInput{Plate: "ABC123", VehicleType: "motorcycle"}
	c, w := newTestContext("POST", "/api/sessions/enter", input)
	mockService.On("Enter", c.Request.Context(), input).Return(nil, domain.ErrNoCapacity)

	handler.enter(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"no available space"}`, w.Body.String())
}

func TestSessionHandler_exit(t *testing.T) {
	mockService := &MockSessionUseCase{}
	handler := NewSessionHandler(mockService)

	input := sessions.ExitInput{PaymentMethod: "cash"}
	c, w := newTestContext("POST", "/api/sessions/5/exit", input)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	receipt := &domain.Receipt{
		Transaction:     domain.Transaction{ID: 9, SessionID: 5, AmountCents: 17500},
		ElapsedText:     "3h 30m",
		AmountFormatted: "RD$175.00",
	}
	mockService.On("Exit", c.Request.Context(), int64(5), input).Return(receipt, nil)

	handler.exit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.Receipt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "RD$175.00", response.AmountFormatted)
	assert.Equal(t, "3h 30m", response.ElapsedText)
}

func TestSessionHandler_exit_Closed(t *testing.T) {
	mockService := &MockSessionUseCase{}
	handler := NewSessionHandler(mockService)

	input := sessions.ExitInput{PaymentMethod: "card"}
	c, w := newTestContext("POST", "/api/sessions/5/exit", input)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	mockService.On("Exit", c.Request.Context(), int64(5), input).Return(nil, domain.NotFoundf("session 5 is already closed"))

	handler.exit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_exit_InvalidID(t *testing.T) {
	handler := NewSessionHandler(&MockSessionUseCase{})

	c, w := newTestContext("POST", "/api/sessions/abc/exit", sessions.ExitInput{PaymentMethod: "cash"})
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.exit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, w.Body.String())
}

func TestSessionHandler_listActive(t *testing.T) {
	mockService := &MockSessionUseCase{}
	handler := NewSessionHandler(mockService)

	c, w := newTestContext("GET", "/api/sessions/active?vehicle_type=regular&plate=ab&min_hours=1.5&alert=true", nil)
	filter := domain.ActiveFilter{
		VehicleType:     domain.VehicleRegular,
		PlateSubstring:  "ab",
		MinElapsedHours: 1.5,
		Alert:           true,
	}
	mockService.On("ListActive", c.Request.Context(), filter).Return([]domain.ActiveSession{
		{Session: domain.Session{ID: 1, Plate: "AB1"}, ElapsedText: "3h 1m", Alert: true},
	}, nil)

	handler.listActive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.ActiveSession
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	assert.True(t, response[0].Alert)
	mockService.AssertExpectations(t)
}

func TestSessionHandler_listActive_BadQuery(t *testing.T) {
	handler := NewSessionHandler(&MockSessionUseCase{})

	for _, target := range []string{"/api/sessions/active?min_hours=x", "/api/sessions/active?alert=maybe"} {
		c, w := newTestContext("GET", target, nil)
		handler.listActive(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}
