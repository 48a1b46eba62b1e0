package domain

import "fmt"

// VehicleType is the kind of space a vehicle needs.
type VehicleType string

const (
	VehicleRegular    VehicleType = "regular"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleAccessible VehicleType = "accessible"
)

// VehicleTypes lists every variant in display order.
var VehicleTypes = []VehicleType{VehicleRegular, VehicleMotorcycle, VehicleAccessible}

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case VehicleRegular, VehicleMotorcycle, VehicleAccessible:
		return VehicleType(s), nil
	}
	return "", fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, s)
}

func (t VehicleType) Valid() bool {
	_, err := ParseVehicleType(string(t))
	return err == nil
}

// Presentation is the icon and label shown for a vehicle type.
type Presentation struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Presentation panics on an unknown variant. Every constant must also be
// listed in VehicleTypes, which the package tests walk.
func (t VehicleType) Presentation() Presentation {
	switch t {
	case VehicleRegular:
		return Presentation{Icon: "fa-car", Label: "Regular"}
	case VehicleMotorcycle:
		return Presentation{Icon: "fa-motorcycle", Label: "Motorcycle"}
	case VehicleAccessible:
		return Presentation{Icon: "fa-wheelchair", Label: "Accessible"}
	}
	panic(fmt.Sprintf("domain: unhandled vehicle type %q", string(t)))
}
