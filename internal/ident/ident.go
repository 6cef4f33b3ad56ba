// Package ident generates the timestamp-based identifiers used by all records.
package ident

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
)

// clock hands out unix-millisecond stamps with a monotonic floor, so two ids
// generated inside the same millisecond never collide.
type clock struct {
	mu   sync.Mutex
	last int64
}

func (c *clock) stamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

var stamps clock

// Driver returns a DRV-<ms>-<9 alnum> identifier. The random suffix is the
// driver's whole credential entropy, so it comes from a UUID rather than a
// seeded PRNG.
func Driver() string {
	u := uuid.Must(uuid.NewV4())
	suffix := strings.ReplaceAll(u.String(), "-", "")[:9]
	return fmt.Sprintf("DRV-%d-%s", stamps.stamp(), suffix)
}

// Vehicle returns a VEH-<ms> identifier.
func Vehicle() string { return fmt.Sprintf("VEH-%d", stamps.stamp()) }

// Transaction returns a TXN-<ms> identifier.
func Transaction() string { return fmt.Sprintf("TXN-%d", stamps.stamp()) }
