package fee

import (
	"fmt"
	"time"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type FeeCalculator interface {
	ComputeFee(entry, exit time.Time, vehicleType domain.VehicleType) (int64, error)
	Format(cents int64) string
	Currency() string
}

// Calculator bills by the started minute against an hourly rate per vehicle
// type, with a minimum billable duration.
type Calculator struct {
	rates          map[domain.VehicleType]int64
	minimumMinutes int64
	currency       string
	symbol         string
	printer        *message.Printer
}

func NewCalculator(cfg config.BillingConfig) (*Calculator, error) {
	rates := make(map[domain.VehicleType]int64, len(domain.VehicleTypes))
	for _, t := range domain.VehicleTypes {
		rate, ok := cfg.HourlyRates[string(t)]
		if !ok {
			return nil, fmt.Errorf("billing: no hourly rate for %s", t)
		}
		if rate < 0 {
			return nil, fmt.Errorf("billing: negative hourly rate for %s", t)
		}
		rates[t] = rate
	}
	if cfg.MinimumMinutes < 0 {
		return nil, fmt.Errorf("billing: negative minimum minutes")
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.English
	}

	return &Calculator{
		rates:          rates,
		minimumMinutes: int64(cfg.MinimumMinutes),
		currency:       cfg.Currency,
		symbol:         cfg.CurrencySymbol,
		printer:        message.NewPrinter(tag),
	}, nil
}

func (c *Calculator) ComputeFee(entry, exit time.Time, vehicleType domain.VehicleType) (int64, error) {
	if exit.Before(entry) {
		return 0, domain.ErrInvalidTimeRange
	}
	rate, ok := c.rates[vehicleType]
	if !ok {
		return 0, domain.Validationf("unknown vehicle type %q", vehicleType)
	}

	elapsed := exit.Sub(entry)
	minutes := int64(elapsed / time.Minute)
	if elapsed%time.Minute != 0 {
		minutes++
	}
	if minutes < c.minimumMinutes {
		minutes = c.minimumMinutes
	}

	return ceilDiv(minutes*rate, 60), nil
}

// Format renders cents as the currency symbol followed by a locale-grouped
// amount with two decimals, e.g. RD$1,234.56.
func (c *Calculator) Format(cents int64) string {
	amount := float64(cents) / 100
	return c.symbol + c.printer.Sprint(number.Decimal(amount, number.Scale(2)))
}

func (c *Calculator) Currency() string {
	return c.currency
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

var _ FeeCalculator = (*Calculator)(nil)
