package reports

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/Domenick1991/parkinglot/internal/service/fee"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *repository.Store
	sessions *sessions.SessionService
	reports  *ReportService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	calc, err := fee.NewCalculator(config.Default().Billing)
	require.NoError(t, err)

	f := &fixture{
		store: repository.NewMemoryStore().Store(),
		now:   time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.sessions = sessions.NewSessionService(f.store.Sessions, calc, sessions.WithClock(clock))
	f.reports = NewReportService(f.store, calc)
	f.reports.now = clock

	ctx := context.Background()
	for _, sp := range []domain.ParkingSpace{
		{Number: "A-01", Type: domain.VehicleRegular, State: domain.SpaceAvailable},
		{Number: "A-02", Type: domain.VehicleRegular, State: domain.SpaceAvailable},
		{Number: "M-01", Type: domain.VehicleMotorcycle, State: domain.SpaceAvailable},
		{Number: "D-01", Type: domain.VehicleAccessible, State: domain.SpaceMaintenance},
	} {
		sp := sp
		require.NoError(t, f.store.Spaces.Create(ctx, &sp))
	}
	return f
}

func (f *fixture) park(t *testing.T, plate, vehicleType string, stay time.Duration, method string) {
	t.Helper()
	ctx := context.Background()
	session, err := f.sessions.Enter(ctx, sessions.EnterInput{Plate: plate, VehicleType: vehicleType})
	require.NoError(t, err)
	f.now = f.now.Add(stay)
	_, err = f.sessions.Exit(ctx, session.ID, sessions.ExitInput{PaymentMethod: method})
	require.NoError(t, err)
}

func TestReportService_TransactionStatsAndPaymentMethods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.park(t, "AAA111", "regular", 2*time.Hour, "cash")
	f.park(t, "BBB222", "motorcycle", 30*time.Minute, "card")
	f.park(t, "AAA111", "regular", time.Hour, "card")

	stats, err := f.reports.TransactionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, int64(10000+2500+5000), stats.RevenueCents)
	assert.Equal(t, "RD$175.00", stats.RevenueFormatted)
	assert.Equal(t, 2, stats.ByPaymentMethod[domain.PaymentCard])
	assert.Equal(t, 2, stats.ByVehicleType[domain.VehicleRegular])

	methods, err := f.reports.PaymentMethods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, domain.PaymentCash, methods[0].Method)
	assert.Equal(t, int64(10000), methods[0].Cents)
	assert.Equal(t, 2, methods[1].Count)

	frequent, err := f.reports.FrequentVehicles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, frequent, 1)
	assert.Equal(t, "AAA111", frequent[0].Plate)
	assert.Equal(t, 2, frequent[0].Visits)
	assert.Equal(t, "RD$150.00", frequent[0].SpentFormatted)
}

func TestReportService_ListTransactionsFormatsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.park(t, "AAA111", "regular", 3*time.Hour+30*time.Minute, "cash")
	since := f.now.Add(time.Minute)
	f.park(t, "BBB222", "motorcycle", 45*time.Minute, "card")

	rows, err := f.reports.ListTransactions(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byPlate := map[string]domain.TransactionRow{}
	for _, r := range rows {
		byPlate[r.Plate] = r
	}
	assert.Equal(t, "3h 30m", byPlate["AAA111"].ElapsedText)
	assert.Equal(t, "RD$175.00", byPlate["AAA111"].AmountFormatted)
	assert.Equal(t, int64(17500), byPlate["AAA111"].AmountCents)
	assert.Equal(t, "0h 45m", byPlate["BBB222"].ElapsedText)
	assert.Equal(t, "RD$25.00", byPlate["BBB222"].AmountFormatted)

	rows, err = f.reports.ListTransactions(ctx, since)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BBB222", rows[0].Plate)
}

func TestReportService_DashboardAndOccupancy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.park(t, "AAA111", "regular", time.Hour, "cash")
	_, err := f.sessions.Enter(ctx, sessions.EnterInput{Plate: "CCC333", VehicleType: "regular"})
	require.NoError(t, err)

	d, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.RegisteredVehicles)
	assert.Equal(t, 4, d.TotalSpaces)
	assert.Equal(t, 1, d.OccupiedSpaces)
	assert.Equal(t, 25.0, d.OccupancyPercent)
	assert.Equal(t, 1, d.ActiveSessions)
	assert.Equal(t, 1, d.TransactionsToday)
	assert.Equal(t, "RD$50.00", d.TodayRevenue)

	occupancy, err := f.reports.OccupancyByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeOccupancy{Total: 2, Occupied: 1, Available: 1, Percent: 50}, occupancy[domain.VehicleRegular])
	assert.Equal(t, domain.TypeOccupancy{Total: 1, Available: 1}, occupancy[domain.VehicleMotorcycle])
	assert.Equal(t, domain.TypeOccupancy{Total: 1}, occupancy[domain.VehicleAccessible])
}

func TestReportService_RevenueByPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.park(t, "AAA111", "regular", time.Hour, "cash")
	f.now = f.now.Add(3 * 24 * time.Hour)
	f.park(t, "BBB222", "regular", time.Hour, "cash")

	// Saturday 03-15 and Tuesday 03-18; the week starts Monday 03-17.
	r, err := f.reports.RevenueByPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Today.Count)
	assert.Equal(t, 1, r.Week.Count)
	assert.Equal(t, "RD$50.00", r.Week.Formatted)
	assert.Equal(t, 2, r.Month.Count)
	assert.Equal(t, "RD$100.00", r.Month.Formatted)
	assert.Equal(t, int64(5000), r.Month.AverageCents)
	assert.Equal(t, "RD$50.00", r.Month.AverageFormatted)
}

func TestReportService_RevenueWeekStartsMonday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.now = time.Date(2025, 3, 16, 22, 30, 0, 0, time.UTC) // Sunday
	f.park(t, "SUN111", "regular", time.Hour, "cash")

	r, err := f.reports.RevenueByPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Week.Count, "Sunday belongs to the week that began Monday 03-10")

	f.now = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC) // Monday 00:00
	f.park(t, "MON111", "motorcycle", 0, "card")
	f.now = time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC) // Wednesday

	r, err = f.reports.RevenueByPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Today.Count)
	assert.Equal(t, int64(0), r.Today.AverageCents)
	assert.Equal(t, "RD$0.00", r.Today.AverageFormatted)
	assert.Equal(t, 1, r.Week.Count)
	assert.Equal(t, "RD$25.00", r.Week.Formatted)
	assert.Equal(t, 2, r.Month.Count)
	assert.Equal(t, int64(3750), r.Month.AverageCents)
	assert.Equal(t, "RD$37.50", r.Month.AverageFormatted)
}

func TestReportService_WeekSkipsPreviousFriday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.now = time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC) // Friday
	f.park(t, "FRI111", "regular", time.Hour, "cash")
	f.now = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC) // next Wednesday

	r, err := f.reports.RevenueByPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Week.Count)
	assert.Equal(t, "RD$0.00", r.Week.Formatted)
	assert.Equal(t, 1, r.Month.Count)
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		at := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		assert.Equal(t, monday, startOfWeek(at), at.Weekday().String())
	}
}

func TestReportService_RecentActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.park(t, "AAA111", "regular", 90*time.Minute, "card")
	_, err := f.sessions.Enter(ctx, sessions.EnterInput{Plate: "CCC333", VehicleType: "motorcycle"})
	require.NoError(t, err)

	activity, err := f.reports.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activity, 2)

	assert.Equal(t, "CCC333", activity[0].Plate)
	assert.False(t, activity[0].AmountCents.Valid)

	assert.Equal(t, "AAA111", activity[1].Plate)
	assert.Equal(t, int64(7500), activity[1].AmountCents.Int64)
	assert.Equal(t, "card", activity[1].PaymentMethod.String)
	assert.Equal(t, "1h 30m", activity[1].ElapsedText)
}
