// Package form maintains the draft transaction state and its derived quantity.
package form

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/model"
)

// Form holds the single in-progress draft. It lives only for the active
// fueling session and is reset after each successful commit.
type Form struct {
	draft model.Draft
}

// NewForm starts with defaults: today's date, Diesel, empty numeric fields.
func NewForm() *Form {
	f := &Form{}
	f.Reset()
	return f
}

// Reset restores the defaults.
func (f *Form) Reset() {
	f.draft = model.Draft{
		Date:     time.Now().Format("2006-01-02"),
		FuelType: model.FuelDiesel,
	}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() model.Draft { return f.draft }

// SetDate sets the calendar date (YYYY-MM-DD).
func (f *Form) SetDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", errs.ErrValidation)
	}
	f.draft.Date = date
	return nil
}

// SetFuelType sets the product.
func (f *Form) SetFuelType(ft model.FuelType) { f.draft.FuelType = ft }

// SetVehiclePlate stores the plate as entered; existence is checked at commit.
func (f *Form) SetVehiclePlate(plate string) { f.draft.VehiclePlate = plate }

// SetUnitPrice stores the price and recomputes quantity against the stored total.
func (f *Form) SetUnitPrice(p decimal.Decimal) {
	f.draft.UnitPrice = p
	f.recompute()
}

// SetTotal stores the total and recomputes quantity against the stored price.
func (f *Form) SetTotal(t decimal.Decimal) {
	f.draft.Total = t
	f.recompute()
}

// recompute derives quantity = ceil((total/unitPrice)*1000)/1000. If either
// side is not positive the previous quantity is kept, never reset to zero.
func (f *Form) recompute() {
	if q, ok := DeriveQuantity(f.draft.Total, f.draft.UnitPrice); ok {
		f.draft.Quantity = q
	}
}

// DeriveQuantity applies the quantity formula; ok is false when either input
// is not positive.
func DeriveQuantity(total, unitPrice decimal.Decimal) (decimal.Decimal, bool) {
	if !total.IsPositive() || !unitPrice.IsPositive() {
		return decimal.Decimal{}, false
	}
	q := total.Div(unitPrice)
	return q.Shift(3).Ceil().Shift(-3), true
}

// VehicleChecker reports whether a plate belongs to the fleet.
type VehicleChecker func(plate string) bool

// Validate checks that a draft is ready to commit: verified driver present,
// quantity/total positive, plate set and registered. Date and fuel type carry
// defaults and can never fail.
func Validate(d model.Draft, driver *model.Driver, hasVehicle VehicleChecker) error {
	if driver == nil {
		return fmt.Errorf("%w: no verified driver", errs.ErrIncomplete)
	}
	if !d.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity is missing", errs.ErrIncomplete)
	}
	if !d.Total.IsPositive() {
		return fmt.Errorf("%w: total is missing", errs.ErrIncomplete)
	}
	if d.VehiclePlate == "" {
		return fmt.Errorf("%w: vehicle plate is missing", errs.ErrIncomplete)
	}
	if hasVehicle != nil && !hasVehicle(d.VehiclePlate) {
		return fmt.Errorf("%w: vehicle %s is not in the fleet", errs.ErrIncomplete, d.VehiclePlate)
	}
	return nil
}
