package sessions

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/kafka"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/Domenick1991/parkinglot/internal/service/fee"
)

type SessionUseCase interface {
	Enter(ctx context.Context, input EnterInput) (*domain.Session, error)
	Exit(ctx context.Context, sessionID int64, input ExitInput) (*domain.Receipt, error)
	ListActive(ctx context.Context, filter domain.ActiveFilter) ([]domain.ActiveSession, error)
	GetSession(ctx context.Context, id int64) (*domain.Session, error)
}

// Locker short-circuits concurrent exits of one session. The store's
// conditional close stays the authority when no locker is configured.
type Locker interface {
	AcquireSessionLock(ctx context.Context, sessionID int64, ttl time.Duration) (bool, error)
	ReleaseSessionLock(ctx context.Context, sessionID int64) error
}

type EventPublisher interface {
	Emit(ctx context.Context, event kafka.ParkingEvent)
}

type EnterInput struct {
	Plate       string `json:"plate"`
	VehicleType string `json:"vehicle_type"`
}

type ExitInput struct {
	PaymentMethod string `json:"payment_method"`
}

type SessionService struct {
	sessions repository.SessionRepository
	fees     fee.FeeCalculator
	locker   Locker
	events   EventPublisher
	lockTTL  time.Duration
	now      func() time.Time
}

type SessionServiceOption func(*SessionService)

func WithLocker(locker Locker, ttl time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithEvents(events EventPublisher) SessionServiceOption {
	return func(s *SessionService) {
		s.events = events
	}
}

func WithClock(now func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.now = now
	}
}

func NewSessionService(sessions repository.SessionRepository, fees fee.FeeCalculator, opts ...SessionServiceOption) *SessionService {
	service := &SessionService{
		sessions: sessions,
		fees:     fees,
		lockTTL:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *SessionService) Enter(ctx context.Context, input EnterInput) (*domain.Session, error) {
	plate := domain.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, domain.Validationf("plate is required")
	}
	vehicleType, err := domain.ParseVehicleType(input.VehicleType)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Enter(ctx, plate, vehicleType, s.now().UTC())
	if err != nil {
		return nil, err
	}

	log.Printf("session %d: %s entered space %s", session.ID, session.Plate, session.SpaceNumber)
	s.emit(ctx, kafka.ParkingEvent{
		Type:        kafka.EventSessionEntered,
		SessionID:   session.ID,
		SpaceID:     session.SpaceID,
		SpaceNumber: session.SpaceNumber,
		SpaceState:  string(domain.SpaceOccupied),
		Plate:       session.Plate,
		VehicleType: string(session.VehicleType),
	})
	return session, nil
}

func (s *SessionService) Exit(ctx context.Context, sessionID int64, input ExitInput) (*domain.Receipt, error) {
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		ok, err := s.locker.AcquireSessionLock(ctx, sessionID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.Conflictf("exit of session %d is already in progress", sessionID)
		}
		defer func() {
			if err := s.locker.ReleaseSessionLock(ctx, sessionID); err != nil {
				log.Printf("WARNING: failed to release lock of session %d: %v", sessionID, err)
			}
		}()
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.NotFoundf("session %d is already closed", sessionID)
	}

	exitTime := s.now().UTC()
	cents, err := s.fees.ComputeFee(session.EntryTime, exitTime, session.VehicleType)
	if err != nil {
		return nil, err
	}

	elapsed := exitTime.Sub(session.EntryTime)
	txn := &domain.Transaction{
		SessionID:     session.ID,
		Plate:         session.Plate,
		VehicleType:   session.VehicleType,
		SpaceID:       session.SpaceID,
		SpaceNumber:   session.SpaceNumber,
		EntryTime:     session.EntryTime,
		ExitTime:      exitTime,
		ElapsedSec:    int64(elapsed / time.Second),
		AmountCents:   cents,
		Currency:      s.fees.Currency(),
		PaymentMethod: method,
	}
	if err := s.sessions.Close(ctx, txn); err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{
		Transaction:     *txn,
		ElapsedText:     domain.FormatElapsed(elapsed),
		ElapsedHours:    math.Round(elapsed.Hours()*100) / 100,
		AmountFormatted: s.fees.Format(cents),
	}

	log.Printf("session %d: %s left space %s, charged %s", session.ID, session.Plate, session.SpaceNumber, receipt.AmountFormatted)
	s.emit(ctx, kafka.ParkingEvent{
		Type:        kafka.EventSessionExited,
		SessionID:   session.ID,
		SpaceID:     txn.SpaceID,
		SpaceNumber: txn.SpaceNumber,
		SpaceState:  string(domain.SpaceAvailable),
		Plate:       txn.Plate,
		VehicleType: string(txn.VehicleType),
		AmountCents: cents,
		Amount:      receipt.AmountFormatted,
		ElapsedText: receipt.ElapsedText,
	})
	return receipt, nil
}

func (s *SessionService) ListActive(ctx context.Context, filter domain.ActiveFilter) ([]domain.ActiveSession, error) {
	if filter.VehicleType != "" && !filter.VehicleType.Valid() {
		return nil, domain.Validationf("unknown vehicle type %q", filter.VehicleType)
	}
	if filter.MinElapsedHours < 0 {
		return nil, domain.Validationf("min_hours must not be negative")
	}

	sessions, err := s.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]domain.ActiveSession, 0, len(sessions))
	for _, session := range sessions {
		elapsed := now.Sub(session.EntryTime)
		if elapsed < 0 {
			elapsed = 0
		}
		if !filter.Match(session, elapsed) {
			continue
		}
		active = append(active, domain.ActiveSession{
			Session:     session,
			Elapsed:     elapsed,
			ElapsedText: domain.FormatElapsed(elapsed),
			ElapsedMin:  int64(elapsed / time.Minute),
			Alert:       elapsed >= domain.LongStayThreshold,
		})
	}
	return active, nil
}

func (s *SessionService) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *SessionService) emit(ctx context.Context, event kafka.ParkingEvent) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, event)
}

var _ SessionUseCase = (*SessionService)(nil)
