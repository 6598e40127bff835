package enums

import "fmt"

// VehicleStatus is the inventory state of a vehicle.
type VehicleStatus string

const (
	VehicleStatusInStock  VehicleStatus = "in_stock"
	VehicleStatusReserved VehicleStatus = "reserved"
	VehicleStatusSold     VehicleStatus = "sold"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusInStock,
	VehicleStatusReserved,
	VehicleStatusSold,
}

func (s VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}

// FuelType is the internal fuel vocabulary. Exports translate it per marketplace.
type FuelType string

const (
	FuelTypePetrol       FuelType = "petrol"
	FuelTypeDiesel       FuelType = "diesel"
	FuelTypeElectric     FuelType = "electric"
	FuelTypeHybrid       FuelType = "hybrid"
	FuelTypePluginHybrid FuelType = "plugin_hybrid"
	FuelTypeGas          FuelType = "gas"
)

// Transmission is the internal gearbox vocabulary.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)
