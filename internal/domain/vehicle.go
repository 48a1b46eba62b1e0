package domain

import (
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"
)

type VehicleCategory string

const (
	CategorySedan      VehicleCategory = "sedan"
	CategorySUV        VehicleCategory = "suv"
	CategoryPickup     VehicleCategory = "pickup"
	CategoryMotorcycle VehicleCategory = "motorcycle"
	CategoryVan        VehicleCategory = "van"
	CategoryOther      VehicleCategory = "other"
)

func ParseVehicleCategory(s string) (VehicleCategory, error) {
	switch VehicleCategory(s) {
	case CategorySedan, CategorySUV, CategoryPickup, CategoryMotorcycle, CategoryVan, CategoryOther:
		return VehicleCategory(s), nil
	case "":
		return CategoryOther, nil
	}
	return "", Validationf("unknown vehicle category %q", s)
}

type Vehicle struct {
	Plate     string          `json:"plate"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	Color     string          `json:"color"`
	Category  VehicleCategory `json:"category"`
	OwnerName null.String     `json:"owner_name"`
	Phone     null.String     `json:"owner_phone"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type VehicleFilter struct {
	Category VehicleCategory
	Search   string
}

func (f VehicleFilter) Match(v Vehicle) bool {
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	for _, field := range []string{v.Plate, v.Make, v.Model, v.OwnerName.String} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// NormalizePlate trims and upper-cases a plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
