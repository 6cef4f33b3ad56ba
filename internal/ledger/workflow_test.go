package ledger

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/anhhuy/fueltrack/internal/form"
	"github.com/anhhuy/fueltrack/internal/registry"
	"github.com/anhhuy/fueltrack/internal/store/filestore"
	"github.com/anhhuy/fueltrack/internal/verify"
)

type noopReader struct{}

func (noopReader) Start(context.Context) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}
func (noopReader) Stop() error { return nil }

// The full terminal workflow against a real file store: register, verify by
// scanned token, derive quantity, commit, export.
func TestFuelingWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	reg, err := registry.NewRegistry(ctx, st)
	require.NoError(t, err)

	d, err := reg.RegisterDriver(ctx, "Nguyen Van A", "ABC Logistics")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^DRV-\d+-[0-9a-z]+$`), d.ID)

	v, err := reg.RegisterVehicle(ctx, "51a-99999")
	require.NoError(t, err)
	require.Equal(t, "51A-99999", v.Plate)

	m := verify.NewMachine(reg, noopReader{})
	_, err = m.BeginToken(ctx)
	require.NoError(t, err)
	verified, err := m.SubmitToken(d.ID + " ")
	require.NoError(t, err)
	require.Equal(t, "Nguyen Van A", verified.Name)

	f := form.NewForm()
	f.SetUnitPrice(decimal.RequireFromString("23000"))
	f.SetTotal(decimal.RequireFromString("500000"))
	f.SetVehiclePlate("51A-99999")
	require.Equal(t, "21.74", f.Draft().Quantity.String())

	led, err := NewLedger(ctx, st, reg.HasVehicle)
	require.NoError(t, err)
	tx, err := led.Commit(ctx, f.Draft(), verified)
	require.NoError(t, err)
	require.True(t, tx.Total.Equal(decimal.RequireFromString("500000")))
	require.Equal(t, "ABC Logistics", tx.DriverCompany)

	var out strings.Builder
	require.NoError(t, led.ExportCSV(&out))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	// a second process sees the same ledger
	led2, err := NewLedger(ctx, st, reg.HasVehicle)
	require.NoError(t, err)
	require.Len(t, led2.Transactions(), 1)
	require.Equal(t, tx.ID, led2.Transactions()[0].ID)
}
