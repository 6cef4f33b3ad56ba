// Package ledger provides the append-only collection of committed transactions.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/form"
	"github.com/anhhuy/fueltrack/internal/ident"
	"github.com/anhhuy/fueltrack/internal/model"
	"github.com/anhhuy/fueltrack/internal/registry"
	"github.com/anhhuy/fueltrack/internal/store"
)

// Header is the exact CSV export header. Fields are written verbatim, without
// quoting; a name containing a comma shifts columns (kept from the original
// export format).
const Header = "Date,Time,Driver,Company,Vehicle Plate,Fuel Type,Quantity (L),Unit Price (VND),Total (VND),Transaction ID"

// Ledger appends committed transactions and persists the full sequence on
// every commit. Entries are never mutated or removed.
type Ledger struct {
	mu      sync.Mutex
	st      store.Store
	entries []model.Transaction
	fleet   form.VehicleChecker
}

// NewLedger loads the transactions collection; absent means empty. The fleet
// checker backs commit-time validation of the vehicle plate.
func NewLedger(ctx context.Context, st store.Store, fleet form.VehicleChecker) (*Ledger, error) {
	l := &Ledger{st: st, fleet: fleet}
	b, err := st.Get(ctx, store.Transactions)
	if errors.Is(err, errs.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if err := json.Unmarshal(b, &l.entries); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return l, nil
}

// Commit validates the draft again (caller-side validation is not trusted),
// snapshots the driver's fields, assigns an id and commit timestamp, persists
// the appended sequence and returns the new transaction. On a persistence
// failure nothing is appended.
func (l *Ledger) Commit(ctx context.Context, draft model.Draft, driver *model.Driver) (*model.Transaction, error) {
	if err := form.Validate(draft, driver, l.fleet); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := model.Transaction{
		ID:            ident.Transaction(),
		Date:          draft.Date,
		FuelType:      draft.FuelType,
		UnitPrice:     draft.UnitPrice,
		Quantity:      draft.Quantity,
		Total:         draft.Total,
		VehiclePlate:  registry.NormalizePlate(draft.VehiclePlate),
		DriverName:    driver.Name,
		DriverCompany: driver.Company,
		DriverID:      driver.ID,
		Timestamp:     time.Now().UTC(),
	}

	next := append(append([]model.Transaction(nil), l.entries...), tx)
	b, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := l.st.Set(ctx, store.Transactions, b); err != nil {
		return nil, err
	}
	l.entries = next
	return &tx, nil
}

// Transactions returns all entries in insertion order. Reverse-chronological
// presentation is the caller's concern.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Transaction(nil), l.entries...)
}

// ExportCSV writes the header and one row per transaction in ledger order.
// Returns ErrEmpty when there is nothing to export.
func (l *Ledger) ExportCSV(w io.Writer) error {
	l.mu.Lock()
	entries := append([]model.Transaction(nil), l.entries...)
	l.mu.Unlock()

	if len(entries) == 0 {
		return fmt.Errorf("%w: no transactions to export", errs.ErrEmpty)
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteByte('\n')
	for _, t := range entries {
		row := []string{
			t.Date,
			t.Timestamp.Format("15:04:05"),
			t.DriverName,
			t.DriverCompany,
			t.VehiclePlate,
			string(t.FuelType),
			t.Quantity.String(),
			t.UnitPrice.String(),
			t.Total.String(),
			t.ID,
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
