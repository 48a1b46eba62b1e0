package domain

import "time"

type SpaceState string

const (
	SpaceAvailable   SpaceState = "available"
	SpaceOccupied    SpaceState = "occupied"
	SpaceMaintenance SpaceState = "maintenance"
)

func ParseSpaceState(s string) (SpaceState, error) {
	switch SpaceState(s) {
	case SpaceAvailable, SpaceOccupied, SpaceMaintenance:
		return SpaceState(s), nil
	}
	return "", newValidationError("unknown space state %q", s)
}

type ParkingSpace struct {
	ID        int64       `json:"id"`
	Number    string      `json:"number"`
	Type      VehicleType `json:"type"`
	State     SpaceState  `json:"state"`
	Floor     int         `json:"floor"`
	Section   string      `json:"section"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SpaceFilter narrows listSpaces; zero values match everything.
type SpaceFilter struct {
	State   SpaceState
	Type    VehicleType
	Section string
}

func (f SpaceFilter) Match(s ParkingSpace) bool {
	if f.State != "" && s.State != f.State {
		return false
	}
	if f.Type != "" && s.Type != f.Type {
		return false
	}
	if f.Section != "" && s.Section != f.Section {
		return false
	}
	return true
}

type SpaceStats struct {
	Total            int     `json:"total"`
	Available        int     `json:"available"`
	Occupied         int     `json:"occupied"`
	Maintenance      int     `json:"maintenance"`
	OccupancyPercent float64 `json:"occupancy_percent"`
}
