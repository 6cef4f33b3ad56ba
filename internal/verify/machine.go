// Package verify implements the driver verification state machine.
package verify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anhhuy/fueltrack/internal/errs"
	"github.com/anhhuy/fueltrack/internal/model"
)

// State of the verification machine.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingToken     State = "awaiting_token"
	StateAwaitingSelection State = "awaiting_selection"
	StateVerified          State = "verified"
)

// TokenReader produces candidate identity strings from a scan session. Start
// yields candidates on the returned channel until Stop is called, the context
// is canceled, or the underlying source ends; the channel is closed on exit.
// Stop must be idempotent and must release the device deterministically.
type TokenReader interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop() error
}

// DriverDirectory is the registry surface the machine resolves against.
type DriverDirectory interface {
	// FindDriver looks up a driver by exact id.
	FindDriver(id string) (*model.Driver, error)
	// Drivers returns the current registry snapshot in insertion order.
	Drivers() []model.Driver
}

// Machine resolves a candidate token or a list selection into a verified
// driver. Exactly one driver may be held at a time; starting a new
// verification while Verified requires an explicit Reset.
type Machine struct {
	mu       sync.Mutex
	state    State
	dir      DriverDirectory
	reader   TokenReader
	verified *model.Driver
}

// NewMachine starts in Idle.
func NewMachine(dir DriverDirectory, reader TokenReader) *Machine {
	return &Machine{state: StateIdle, dir: dir, reader: reader}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// BeginToken transitions Idle -> AwaitingToken and starts the token reader.
// The caller forwards candidates from the returned channel to SubmitToken.
func (m *Machine) BeginToken(ctx context.Context) (<-chan string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return nil, fmt.Errorf("%w: begin from %s", errs.ErrInvalidState, m.state)
	}
	ch, err := m.reader.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start token reader: %w", err)
	}
	m.state = StateAwaitingToken
	return ch, nil
}

// BeginSelection transitions Idle -> AwaitingSelection and returns the driver
// list to choose from.
func (m *Machine) BeginSelection() ([]model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return nil, fmt.Errorf("%w: begin from %s", errs.ErrInvalidState, m.state)
	}
	m.state = StateAwaitingSelection
	return m.dir.Drivers(), nil
}

// SubmitToken trims and resolves a candidate. On a match the machine stops the
// reader and holds the driver Verified; on a miss it stays put and reports
// ErrNotFound so the caller can retry or cancel.
func (m *Machine) SubmitToken(candidate string) (*model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateAwaitingToken, StateAwaitingSelection:
	case StateVerified:
		return nil, errs.ErrAlreadyVerified
	default:
		return nil, fmt.Errorf("%w: submit from %s", errs.ErrInvalidState, m.state)
	}

	d, err := m.dir.FindDriver(strings.TrimSpace(candidate))
	if err != nil {
		return nil, fmt.Errorf("driver for token: %w", err)
	}
	_ = m.releaseReader()
	m.state = StateVerified
	m.verified = d
	return d, nil
}

// Select verifies a driver chosen from the list. Membership is re-checked
// against the registry rather than trusted from the caller.
func (m *Machine) Select(d model.Driver) (*model.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateAwaitingSelection:
	case StateVerified:
		return nil, errs.ErrAlreadyVerified
	default:
		return nil, fmt.Errorf("%w: select from %s", errs.ErrInvalidState, m.state)
	}

	found, err := m.dir.FindDriver(d.ID)
	if err != nil {
		return nil, fmt.Errorf("driver for selection: %w", err)
	}
	m.state = StateVerified
	m.verified = found
	return found, nil
}

// Cancel returns to Idle from any in-progress state. The reader is released
// even if stopping it fails; the stop error is reported after the transition.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateAwaitingToken, StateAwaitingSelection:
	default:
		return fmt.Errorf("%w: cancel from %s", errs.ErrInvalidState, m.state)
	}
	err := m.releaseReader()
	m.state = StateIdle
	return err
}

// Reset clears the held driver, Verified -> Idle ("change driver").
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateVerified {
		m.state = StateIdle
		m.verified = nil
	}
}

// Verified returns the held driver, if any.
func (m *Machine) Verified() (*model.Driver, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verified == nil {
		return nil, false
	}
	d := *m.verified
	return &d, true
}

func (m *Machine) releaseReader() error {
	if m.state != StateAwaitingToken || m.reader == nil {
		return nil
	}
	return m.reader.Stop()
}
