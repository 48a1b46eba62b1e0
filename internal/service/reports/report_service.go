package reports

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"gopkg.in/guregu/null.v4"
)

type ReportUseCase interface {
	ListTransactions(ctx context.Context, since time.Time) ([]domain.TransactionRow, error)
	TransactionStats(ctx context.Context) (*domain.TransactionStats, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	OccupancyByType(ctx context.Context) (map[domain.VehicleType]domain.TypeOccupancy, error)
	RevenueByPeriod(ctx context.Context) (*domain.RevenueByPeriod, error)
	FrequentVehicles(ctx context.Context, limit int) ([]domain.FrequentVehicle, error)
	PaymentMethods(ctx context.Context) ([]domain.PaymentMethodTotals, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error)
}

type Formatter interface {
	Format(cents int64) string
}

type ReportService struct {
	store     *repository.Store
	formatter Formatter
	now       func() time.Time
}

func NewReportService(store *repository.Store, formatter Formatter) *ReportService {
	return &ReportService{store: store, formatter: formatter, now: time.Now}
}

func (s *ReportService) ListTransactions(ctx context.Context, since time.Time) ([]domain.TransactionRow, error) {
	txns, err := s.store.Transactions.List(ctx, since)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.TransactionRow, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, domain.TransactionRow{
			Transaction:     txn,
			ElapsedText:     domain.FormatElapsed(txn.Elapsed()),
			AmountFormatted: s.formatter.Format(txn.AmountCents),
		})
	}
	return rows, nil
}

func (s *ReportService) TransactionStats(ctx context.Context) (*domain.TransactionStats, error) {
	txns, err := s.store.Transactions.List(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	stats := &domain.TransactionStats{
		Count:           len(txns),
		ByPaymentMethod: make(map[domain.PaymentMethod]int),
		ByVehicleType:   make(map[domain.VehicleType]int),
	}
	for _, t := range txns {
		stats.RevenueCents += t.AmountCents
		stats.ByPaymentMethod[t.PaymentMethod]++
		stats.ByVehicleType[t.VehicleType]++
	}
	stats.RevenueFormatted = s.formatter.Format(stats.RevenueCents)
	return stats, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	now := s.now().UTC()
	today := startOfDay(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	vehicles, err := s.store.Vehicles.Count(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Spaces.List(ctx, domain.SpaceFilter{})
	if err != nil {
		return nil, err
	}
	active, err := s.store.Sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.Transactions.List(ctx, month)
	if err != nil {
		return nil, err
	}

	stats := spaces.ComputeStats(all)
	d := &domain.Dashboard{
		RegisteredVehicles: vehicles,
		TotalSpaces:        stats.Total,
		OccupiedSpaces:     stats.Occupied,
		OccupancyPercent:   stats.OccupancyPercent,
		ActiveSessions:     len(active),
	}
	for _, t := range txns {
		d.MonthRevenueCents += t.AmountCents
		if !t.ExitTime.Before(today) {
			d.TodayRevenueCents += t.AmountCents
			d.TransactionsToday++
		}
	}
	d.TodayRevenue = s.formatter.Format(d.TodayRevenueCents)
	d.MonthRevenue = s.formatter.Format(d.MonthRevenueCents)
	return d, nil
}

func (s *ReportService) OccupancyByType(ctx context.Context) (map[domain.VehicleType]domain.TypeOccupancy, error) {
	all, err := s.store.Spaces.List(ctx, domain.SpaceFilter{})
	if err != nil {
		return nil, err
	}

	byType := make(map[domain.VehicleType]domain.TypeOccupancy, len(domain.VehicleTypes))
	for _, t := range domain.VehicleTypes {
		byType[t] = domain.TypeOccupancy{}
	}
	for _, sp := range all {
		o := byType[sp.Type]
		o.Total++
		switch sp.State {
		case domain.SpaceOccupied:
			o.Occupied++
		case domain.SpaceAvailable:
			o.Available++
		}
		byType[sp.Type] = o
	}
	for t, o := range byType {
		o.Percent = spaces.Percent(o.Occupied, o.Total)
		byType[t] = o
	}
	return byType, nil
}

func (s *ReportService) RevenueByPeriod(ctx context.Context) (*domain.RevenueByPeriod, error) {
	now := s.now().UTC()
	today := startOfDay(now)
	week := startOfWeek(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	since := month
	if week.Before(since) {
		since = week
	}
	txns, err := s.store.Transactions.List(ctx, since)
	if err != nil {
		return nil, err
	}

	var r domain.RevenueByPeriod
	for _, t := range txns {
		if !t.ExitTime.Before(today) {
			add(&r.Today, t)
		}
		if !t.ExitTime.Before(week) {
			add(&r.Week, t)
		}
		if !t.ExitTime.Before(month) {
			add(&r.Month, t)
		}
	}
	for _, p := range []*domain.PeriodRevenue{&r.Today, &r.Week, &r.Month} {
		s.finish(p)
	}
	return &r, nil
}

// finish fills the formatted totals and the per-transaction average,
// rounded half up to the cent.
func (s *ReportService) finish(p *domain.PeriodRevenue) {
	if p.Count > 0 {
		n := int64(p.Count)
		p.AverageCents = (p.Cents + n/2) / n
	}
	p.Formatted = s.formatter.Format(p.Cents)
	p.AverageFormatted = s.formatter.Format(p.AverageCents)
}

func add(p *domain.PeriodRevenue, t domain.Transaction) {
	p.Cents += t.AmountCents
	p.Count++
}

func (s *ReportService) FrequentVehicles(ctx context.Context, limit int) ([]domain.FrequentVehicle, error) {
	if limit <= 0 {
		limit = 10
	}
	txns, err := s.store.Transactions.List(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	byPlate := make(map[string]*domain.FrequentVehicle)
	for _, t := range txns {
		fv, ok := byPlate[t.Plate]
		if !ok {
			fv = &domain.FrequentVehicle{Plate: t.Plate}
			byPlate[t.Plate] = fv
		}
		fv.Visits++
		fv.SpentCents += t.AmountCents
	}

	result := make([]domain.FrequentVehicle, 0, len(byPlate))
	for _, fv := range byPlate {
		fv.SpentFormatted = s.formatter.Format(fv.SpentCents)
		result = append(result, *fv)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Visits != result[j].Visits {
			return result[i].Visits > result[j].Visits
		}
		return result[i].Plate < result[j].Plate
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *ReportService) PaymentMethods(ctx context.Context) ([]domain.PaymentMethodTotals, error) {
	txns, err := s.store.Transactions.List(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	totals := []domain.PaymentMethodTotals{{Method: domain.PaymentCash}, {Method: domain.PaymentCard}}
	for _, t := range txns {
		for i := range totals {
			if totals[i].Method == t.PaymentMethod {
				totals[i].Count++
				totals[i].Cents += t.AmountCents
			}
		}
	}
	for i := range totals {
		totals[i].Formatted = s.formatter.Format(totals[i].Cents)
	}
	return totals, nil
}

func (s *ReportService) RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	sessions, err := s.store.Sessions.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	activity := make([]domain.Activity, 0, len(sessions))
	for _, session := range sessions {
		a := domain.Activity{
			SessionID:   session.ID,
			Plate:       session.Plate,
			VehicleType: session.VehicleType,
			SpaceNumber: session.SpaceNumber,
			Status:      session.Status,
			EntryTime:   session.EntryTime,
			ElapsedText: domain.FormatElapsed(now.Sub(session.EntryTime)),
		}
		if session.Status == domain.SessionClosed {
			txn, err := s.store.Transactions.GetBySessionID(ctx, session.ID)
			if err != nil {
				return nil, err
			}
			a.ExitTime = null.TimeFrom(txn.ExitTime)
			a.AmountCents = null.IntFrom(txn.AmountCents)
			a.AmountFormatted = null.StringFrom(s.formatter.Format(txn.AmountCents))
			a.PaymentMethod = null.StringFrom(string(txn.PaymentMethod))
			a.ElapsedText = domain.FormatElapsed(txn.Elapsed())
		}
		activity = append(activity, a)
	}
	return activity, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek is Monday 00:00 UTC of the week containing t.
func startOfWeek(t time.Time) time.Time {
	sinceMonday := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -sinceMonday)
}

var _ ReportUseCase = (*ReportService)(nil)
