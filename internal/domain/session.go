package domain

import (
	"fmt"
	"strings"
	"time"
)

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

// LongStayThreshold is the elapsed time after which an active session is
// flagged as an alert.
const LongStayThreshold = 3 * time.Hour

type Session struct {
	ID          int64         `json:"id"`
	Plate       string        `json:"plate"`
	VehicleType VehicleType   `json:"vehicle_type"`
	SpaceID     int64         `json:"space_id"`
	SpaceNumber string        `json:"space_number"`
	EntryTime   time.Time     `json:"entry_time"`
	Status      SessionStatus `json:"status"`
}

// ActiveSession is a Session annotated with its elapsed time at read time.
type ActiveSession struct {
	Session
	Elapsed     time.Duration `json:"-"`
	ElapsedText string        `json:"elapsed_text"`
	ElapsedMin  int64         `json:"elapsed_minutes"`
	Alert       bool          `json:"alert"`
}

type ActiveFilter struct {
	VehicleType     VehicleType
	PlateSubstring  string
	MinElapsedHours float64
	// Alert keeps only sessions at or past LongStayThreshold.
	Alert bool
}

func (f ActiveFilter) Match(s Session, elapsed time.Duration) bool {
	if f.VehicleType != "" && s.VehicleType != f.VehicleType {
		return false
	}
	if f.PlateSubstring != "" && !strings.Contains(s.Plate, NormalizePlate(f.PlateSubstring)) {
		return false
	}
	if f.MinElapsedHours > 0 && elapsed < time.Duration(f.MinElapsedHours*float64(time.Hour)) {
		return false
	}
	if f.Alert && elapsed < LongStayThreshold {
		return false
	}
	return true
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard:
		return PaymentMethod(s), nil
	}
	return "", Validationf("unknown payment method %q", s)
}

type Transaction struct {
	ID            int64         `json:"id"`
	SessionID     int64         `json:"session_id"`
	Plate         string        `json:"plate"`
	VehicleType   VehicleType   `json:"vehicle_type"`
	SpaceID       int64         `json:"space_id"`
	SpaceNumber   string        `json:"space_number"`
	EntryTime     time.Time     `json:"entry_time"`
	ExitTime      time.Time     `json:"exit_time"`
	ElapsedSec    int64         `json:"elapsed_seconds"`
	AmountCents   int64         `json:"amount_cents"`
	Currency      string        `json:"currency"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

func (t Transaction) Elapsed() time.Duration {
	return time.Duration(t.ElapsedSec) * time.Second
}

// Receipt is the exit result shown to the operator.
type Receipt struct {
	Transaction     Transaction `json:"transaction"`
	ElapsedText     string      `json:"elapsed_text"`
	ElapsedHours    float64     `json:"elapsed_hours"`
	AmountFormatted string      `json:"amount_formatted"`
}

// FormatElapsed renders a duration as "{h}h {m}m", truncating seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
