package sessions

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/kafka"
)

// AlertMarker remembers which sessions were already alerted.
type AlertMarker interface {
	MarkAlerted(ctx context.Context, sessionID int64, ttl time.Duration) (bool, error)
}

// LongStaySweeper publishes one long_stay_alert per session that stays at or
// past the threshold.
type LongStaySweeper struct {
	sessions  SessionUseCase
	marker    AlertMarker
	events    EventPublisher
	threshold time.Duration
}

func NewLongStaySweeper(sessions SessionUseCase, marker AlertMarker, events EventPublisher, threshold time.Duration) *LongStaySweeper {
	if threshold <= 0 {
		threshold = domain.LongStayThreshold
	}
	return &LongStaySweeper{sessions: sessions, marker: marker, events: events, threshold: threshold}
}

// Sweep returns the sessions alerted in this run.
func (s *LongStaySweeper) Sweep(ctx context.Context) ([]domain.ActiveSession, error) {
	active, err := s.sessions.ListActive(ctx, domain.ActiveFilter{MinElapsedHours: s.threshold.Hours()})
	if err != nil {
		return nil, err
	}

	var alerted []domain.ActiveSession
	for _, session := range active {
		if s.marker != nil {
			fresh, err := s.marker.MarkAlerted(ctx, session.ID, 24*time.Hour)
			if err != nil {
				log.Printf("long stay: mark session %d: %v", session.ID, err)
				continue
			}
			if !fresh {
				continue
			}
		}
		if s.events != nil {
			s.events.Emit(ctx, kafka.ParkingEvent{
				Type:        kafka.EventLongStayAlert,
				SessionID:   session.ID,
				SpaceID:     session.SpaceID,
				SpaceNumber: session.SpaceNumber,
				Plate:       session.Plate,
				VehicleType: string(session.VehicleType),
				ElapsedText: session.ElapsedText,
			})
		}
		alerted = append(alerted, session)
	}
	return alerted, nil
}
