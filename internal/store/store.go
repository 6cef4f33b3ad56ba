// Package store defines the persistence interface implemented by concrete backends.
package store

import "context"

// Collection names used by the registry and ledger. Each maps to one ordered
// JSON array of records.
const (
	Drivers      = "drivers"
	Vehicles     = "vehicles"
	Transactions = "transactions"
)

// Store is a key-value store over named collections. A collection that was
// never written reads back as errs.ErrNotFound; callers treat that as empty.
type Store interface {
	// Get returns the raw JSON value of a collection.
	Get(ctx context.Context, collection string) ([]byte, error)
	// Set replaces the value of a collection atomically.
	Set(ctx context.Context, collection string, value []byte) error
}
