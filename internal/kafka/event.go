package kafka

import "time"

const (
	EventSpaceCreated      = "space_created"
	EventSpaceUpdated      = "space_updated"
	EventSpaceStateChanged = "space_state_changed"
	EventSpaceDeleted      = "space_deleted"
	EventSessionEntered    = "session_entered"
	EventSessionExited     = "session_exited"
	EventLongStayAlert     = "long_stay_alert"
)

// ParkingEvent is the payload written to the parking and notifications topics.
// ID is unique per emitted event so consumers can drop redeliveries.
type ParkingEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	SessionID   int64     `json:"session_id,omitempty"`
	SpaceID     int64     `json:"space_id,omitempty"`
	SpaceNumber string    `json:"space_number,omitempty"`
	SpaceState  string    `json:"space_state,omitempty"`
	Plate       string    `json:"plate,omitempty"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	ElapsedText string    `json:"elapsed_text,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Key partitions events by session when there is one, otherwise by space.
func (e ParkingEvent) Key() string {
	if e.SessionID != 0 {
		return "session-" + itoa(e.SessionID)
	}
	return "space-" + itoa(e.SpaceID)
}
