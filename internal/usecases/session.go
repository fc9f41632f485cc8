package usecases

import (
	"sync"

	"github.com/abelzeko/tank-bot/internal/entities"
)

// Phase is the step a calculation flow is in
type Phase int

const (
	Idle Phase = iota
	Validating
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Ticket identifies one calculation started with Session.Begin
type Ticket uint64

// State is a snapshot of a session. Value is only set in Succeeded and Err only
// in Failed.
type State[T any] struct {
	Phase Phase
	Value T
	Err   error
}

// Session tracks Idle -> Validating -> Succeeded|Failed -> Idle for one flow.
// Any edit returns the session to Idle and invalidates the pending ticket, so a
// result computed for old inputs is dropped instead of displayed.
type Session[T any] struct {
	mu     sync.Mutex
	state  State[T]
	ticket Ticket
}

// Edit records that an input changed
func (s *Session[T]) Edit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.state = State[T]{Phase: Idle}
}

// Begin starts a calculation and supersedes any pending one
func (s *Session[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.state = State[T]{Phase: Validating}
	return s.ticket
}

// Complete stores the outcome of the calculation identified by t. It returns
// false, leaving the session untouched, when t has been superseded.
func (s *Session[T]) Complete(t Ticket, value T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.ticket || s.state.Phase != Validating {
		return false
	}
	if err != nil {
		s.state = State[T]{Phase: Failed, Err: err}
	} else {
		s.state = State[T]{Phase: Succeeded, Value: value}
	}
	return true
}

// State returns the current snapshot
func (s *Session[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Calculator is the single-tank calculator form: a selected fuel, a typed
// height and the session of its last calculation. Its methods other than
// Complete must be called from one goroutine.
type Calculator struct {
	Session[entities.ResolvedVolume]

	resolver *VolumeResolver
	fuel     entities.FuelID
	height   string
}

// NewCalculator creates an empty calculator form
func NewCalculator(resolver *VolumeResolver) *Calculator {
	return &Calculator{resolver: resolver}
}

// SelectFuel changes the fuel being measured
func (c *Calculator) SelectFuel(fuel entities.FuelID) {
	c.fuel = fuel
	c.Edit()
}

// SetHeight changes the typed height
func (c *Calculator) SetHeight(raw string) {
	c.height = raw
	c.Edit()
}

// Fuel returns the selected fuel
func (c *Calculator) Fuel() entities.FuelID {
	return c.fuel
}

// Calculate starts a calculation for the current inputs and returns its
// ticket with the outcome. The caller decides when to Complete it.
func (c *Calculator) Calculate() (Ticket, entities.ResolvedVolume, error) {
	ticket := c.Begin()
	resolved, err := c.resolver.VolumeForInput(c.fuel, c.height)
	return ticket, resolved, err
}
