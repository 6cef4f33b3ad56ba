// Package model defines domain entities shared by the registry, ledger and form.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FuelType is the product dispensed in a transaction.
type FuelType string

const (
	FuelDiesel   FuelType = "Diesel"
	FuelUnleaded FuelType = "Unleaded"
)

// ParseFuelType maps user input to a FuelType, case-insensitively.
func ParseFuelType(s string) (FuelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diesel":
		return FuelDiesel, nil
	case "unleaded":
		return FuelUnleaded, nil
	}
	return "", fmt.Errorf("unknown fuel type %q", s)
}

// Driver is a registered driver. The ID doubles as the scannable credential.
// Immutable once created.
type Driver struct {
	ID      string    `json:"id"` // DRV-<unix-ms>-<9 alnum>
	Name    string    `json:"name"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"addedDate"`
}

// Vehicle is a fleet vehicle keyed by its normalized plate.
type Vehicle struct {
	ID      string    `json:"id"`    // VEH-<unix-ms>
	Plate   string    `json:"plate"` // trimmed, uppercased, unique
	AddedAt time.Time `json:"addedDate"`
}

// Draft is the in-progress transaction form state. Quantity is derived from
// Total and UnitPrice, never entered directly.
type Draft struct {
	Date         string          `json:"date"` // YYYY-MM-DD
	FuelType     FuelType        `json:"fuelType"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     decimal.Decimal `json:"quantity"` // liters, 3 decimals, rounded up
	Total        decimal.Decimal `json:"total"`
	VehiclePlate string          `json:"vehiclePlate"`
}

// Transaction is a committed, immutable ledger entry. Driver fields are
// snapshotted at commit time; later registry changes never alter history.
type Transaction struct {
	ID            string          `json:"id"` // TXN-<unix-ms>
	Date          string          `json:"date"`
	FuelType      FuelType        `json:"fuelType"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      decimal.Decimal `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
	VehiclePlate  string          `json:"vehiclePlate"`
	DriverName    string          `json:"driverName"`
	DriverCompany string          `json:"driverCompany"`
	DriverID      string          `json:"driverId"`
	Timestamp     time.Time       `json:"timestamp"` // commit time
}
