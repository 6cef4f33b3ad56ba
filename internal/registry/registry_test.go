package registry

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/store"
)

// fakeStore keeps collections in memory and can be told to fail writes.
type fakeStore struct {
	data   map[string][]byte
	setErr error
	sets   int
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string][]byte{}} }

func (f *fakeStore) Get(_ context.Context, name string) ([]byte, error) {
	b, ok := f.data[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) Set(_ context.Context, name string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[name] = append([]byte(nil), value...)
	return nil
}

var _ store.Store = (*fakeStore)(nil)

var reDriverID = regexp.MustCompile(`^DRV-\d+-[0-9a-z]{9}$`)

func TestRegistry_RegisterDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newFakeStore()
	r, err := NewRegistry(ctx, st)
	require.NoError(t, err)

	d, err := r.RegisterDriver(ctx, "  Nguyen Van A  ", " ABC Logistics ")
	require.NoError(t, err)
	require.Equal(t, "Nguyen Van A", d.Name)
	require.Equal(t, "ABC Logistics", d.Company)
	require.Regexp(t, reDriverID, d.ID)

	if _, err := r.RegisterDriver(ctx, "   ", "ABC"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty name: want ErrValidation, got %v", err)
	}
	if _, err := r.RegisterDriver(ctx, "B", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty company: want ErrValidation, got %v", err)
	}

	require.Len(t, r.Drivers(), 1)
}

func TestRegistry_RegisterDriver_PersistFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newFakeStore()
	r, err := NewRegistry(ctx, st)
	require.NoError(t, err)

	st.setErr = errors.New("disk full")
	_, err = r.RegisterDriver(ctx, "A", "B")
	require.Error(t, err)
	require.Empty(t, r.Drivers())

	// retry succeeds once the store recovers
	st.setErr = nil
	_, err = r.RegisterDriver(ctx, "A", "B")
	require.NoError(t, err)
	require.Len(t, r.Drivers(), 1)
}

func TestRegistry_RegisterVehicle_NormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, err := NewRegistry(ctx, newFakeStore())
	require.NoError(t, err)

	v, err := r.RegisterVehicle(ctx, "  51a-99999 ")
	require.NoError(t, err)
	require.Equal(t, "51A-99999", v.Plate)
	require.Regexp(t, `^VEH-\d+$`, v.ID)

	_, err = r.RegisterVehicle(ctx, "abc-123")
	require.NoError(t, err)
	_, err = r.RegisterVehicle(ctx, "ABC-123")
	require.ErrorIs(t, err, errs.ErrDuplicate)

	if _, err := r.RegisterVehicle(ctx, "   "); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty plate: want ErrValidation, got %v", err)
	}

	require.Len(t, r.Vehicles(), 2)
	require.True(t, r.HasVehicle("abc-123"))
	require.False(t, r.HasVehicle("zzz-000"))
}

func TestRegistry_FindDriver_ExactMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r, err := NewRegistry(ctx, newFakeStore())
	require.NoError(t, err)

	d, err := r.RegisterDriver(ctx, "A", "B")
	require.NoError(t, err)

	found, err := r.FindDriver(d.ID)
	require.NoError(t, err)
	require.Equal(t, d.ID, found.ID)

	// no trimming on the lookup side; callers trim the candidate
	_, err = r.FindDriver(" " + d.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = r.FindDriver("DRV-0-unknown00")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRegistry_ReloadsFromStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newFakeStore()

	r1, err := NewRegistry(ctx, st)
	require.NoError(t, err)
	d, err := r1.RegisterDriver(ctx, "A", "B")
	require.NoError(t, err)
	_, err = r1.RegisterVehicle(ctx, "51a-99999")
	require.NoError(t, err)

	r2, err := NewRegistry(ctx, st)
	require.NoError(t, err)
	require.Len(t, r2.Drivers(), 1)
	require.Len(t, r2.Vehicles(), 1)
	found, err := r2.FindDriver(d.ID)
	require.NoError(t, err)
	require.Equal(t, "A", found.Name)
}
