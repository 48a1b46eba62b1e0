package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type TransactionStats struct {
	Count            int                   `json:"count"`
	RevenueCents     int64                 `json:"revenue_cents"`
	RevenueFormatted string                `json:"revenue_formatted"`
	ByPaymentMethod  map[PaymentMethod]int `json:"by_payment_method"`
	ByVehicleType    map[VehicleType]int   `json:"by_vehicle_type"`
}

type Dashboard struct {
	RegisteredVehicles int     `json:"registered_vehicles"`
	TotalSpaces        int     `json:"total_spaces"`
	OccupiedSpaces     int     `json:"occupied_spaces"`
	OccupancyPercent   float64 `json:"occupancy_percent"`
	ActiveSessions     int     `json:"active_sessions"`
	TodayRevenueCents  int64   `json:"today_revenue_cents"`
	TodayRevenue       string  `json:"today_revenue_formatted"`
	MonthRevenueCents  int64   `json:"month_revenue_cents"`
	MonthRevenue       string  `json:"month_revenue_formatted"`
	TransactionsToday  int     `json:"transactions_today"`
}

type TypeOccupancy struct {
	Total     int     `json:"total"`
	Occupied  int     `json:"occupied"`
	Available int     `json:"available"`
	Percent   float64 `json:"percent"`
}

type PeriodRevenue struct {
	Cents            int64  `json:"cents"`
	Formatted        string `json:"formatted"`
	Count            int    `json:"count"`
	AverageCents     int64  `json:"average_cents"`
	AverageFormatted string `json:"average_formatted"`
}

type RevenueByPeriod struct {
	Today PeriodRevenue `json:"today"`
	Week  PeriodRevenue `json:"week"`
	Month PeriodRevenue `json:"month"`
}

type FrequentVehicle struct {
	Plate          string `json:"plate"`
	Visits         int    `json:"visits"`
	SpentCents     int64  `json:"spent_cents"`
	SpentFormatted string `json:"spent_formatted"`
}

type PaymentMethodTotals struct {
	Method    PaymentMethod `json:"method"`
	Count     int           `json:"count"`
	Cents     int64         `json:"cents"`
	Formatted string        `json:"formatted"`
}

// TransactionRow is a transaction as listed to operators.
type TransactionRow struct {
	Transaction
	ElapsedText     string `json:"elapsed_text"`
	AmountFormatted string `json:"amount_formatted"`
}

// Activity is one row of the recent-activity feed; exit fields are null
// while the session is still active.
type Activity struct {
	SessionID       int64         `json:"session_id"`
	Plate           string        `json:"plate"`
	VehicleType     VehicleType   `json:"vehicle_type"`
	SpaceNumber     string        `json:"space_number"`
	Status          SessionStatus `json:"status"`
	EntryTime       time.Time     `json:"entry_time"`
	ExitTime        null.Time     `json:"exit_time"`
	AmountCents     null.Int      `json:"amount_cents"`
	AmountFormatted null.String   `json:"amount_formatted"`
	PaymentMethod   null.String   `json:"payment_method"`
	ElapsedText     string        `json:"elapsed_text"`
}
