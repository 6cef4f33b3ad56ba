// Package registry manages driver and vehicle records backed by the collection store.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/ident"
	"github.com/anhhuy/fueltrack/internal/model"
	"github.com/anhhuy/fueltrack/internal/store"
)

// Registry holds the in-memory driver and vehicle collections. Every mutation
// persists the full collection first; on a persistence failure the in-memory
// state is left unchanged and the caller may retry.
type Registry struct {
	mu       sync.Mutex
	st       store.Store
	drivers  []model.Driver
	vehicles []model.Vehicle
}

// NewRegistry loads both collections. Absent collections start empty.
func NewRegistry(ctx context.Context, st store.Store) (*Registry, error) {
	r := &Registry{st: st}
	if err := loadSeq(ctx, st, store.Drivers, &r.drivers); err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	if err := loadSeq(ctx, st, store.Vehicles, &r.vehicles); err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	return r, nil
}

func loadSeq[T any](ctx context.Context, st store.Store, name string, out *[]T) error {
	b, err := st.Get(ctx, name)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// RegisterDriver validates, persists and adds a new driver, returning it with
// its issued credential id.
func (r *Registry) RegisterDriver(ctx context.Context, name, company string) (*model.Driver, error) {
	name = strings.TrimSpace(name)
	company = strings.TrimSpace(company)
	if name == "" {
		return nil, fmt.Errorf("%w: driver name is required", errs.ErrValidation)
	}
	if company == "" {
		return nil, fmt.Errorf("%w: company is required", errs.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := model.Driver{
		ID:      ident.Driver(),
		Name:    name,
		Company: company,
		AddedAt: time.Now().UTC(),
	}
	next := append(append([]model.Driver(nil), r.drivers...), d)
	if err := saveSeq(ctx, r.st, store.Drivers, next); err != nil {
		return nil, err
	}
	r.drivers = next
	return &d, nil
}

// NormalizePlate trims and uppercases a plate for uniqueness checks and storage.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// RegisterVehicle validates, persists and adds a new vehicle. Plates are
// normalized before the uniqueness check, so "abc-123" and "ABC-123" collide.
func (r *Registry) RegisterVehicle(ctx context.Context, plate string) (*model.Vehicle, error) {
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: vehicle plate is required", errs.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.vehicles {
		if v.Plate == normalized {
			return nil, fmt.Errorf("%w: vehicle %s is already in the fleet", errs.ErrDuplicate, normalized)
		}
	}

	v := model.Vehicle{
		ID:      ident.Vehicle(),
		Plate:   normalized,
		AddedAt: time.Now().UTC(),
	}
	next := append(append([]model.Vehicle(nil), r.vehicles...), v)
	if err := saveSeq(ctx, r.st, store.Vehicles, next); err != nil {
		return nil, err
	}
	r.vehicles = next
	return &v, nil
}

func saveSeq[T any](ctx context.Context, st store.Store, name string, seq []T) error {
	b, err := json.Marshal(seq)
	if err != nil {
		return err
	}
	return st.Set(ctx, name, b)
}

// Drivers returns all drivers in insertion order.
func (r *Registry) Drivers() []model.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Driver(nil), r.drivers...)
}

// Vehicles returns all vehicles in insertion order.
func (r *Registry) Vehicles() []model.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Vehicle(nil), r.vehicles...)
}

// FindDriver looks up a driver by exact id. Callers must trim scanned tokens
// first; the lookup itself never normalizes.
func (r *Registry) FindDriver(id string) (*model.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.drivers {
		if r.drivers[i].ID == id {
			d := r.drivers[i]
			return &d, nil
		}
	}
	return nil, errs.ErrNotFound
}

// HasVehicle reports whether a plate (normalized) belongs to the fleet.
func (r *Registry) HasVehicle(plate string) bool {
	normalized := NormalizePlate(plate)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vehicles {
		if v.Plate == normalized {
			return true
		}
	}
	return false
}
