package wizard

import (
	"errors"
	"slices"
	"sync"
)

// Step is one screen of the sale-creation flow.
type Step string

const (
	StepClient       Step = "client"
	StepLot          Step = "lot"
	StepTerms        Step = "terms"
	StepPayments     Step = "payments"
	StepConfirmation Step = "confirmation"
)

// SaleSteps is the order of the sale-creation flow.
var SaleSteps = []Step{StepClient, StepLot, StepTerms, StepPayments, StepConfirmation}

var ErrUnknownStep = errors.New("unknown wizard step")

// Steps tracks the position in an ordered list of steps.
type Steps struct {
	mu      sync.Mutex
	steps   []Step
	current int
}

// NewSteps creates a tracker on the first step. With no steps it uses
// SaleSteps.
func NewSteps(steps ...Step) *Steps {
	if len(steps) == 0 {
		steps = SaleSteps
	}
	return &Steps{steps: slices.Clone(steps)}
}

// Current returns the active step.
func (s *Steps) Current() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.current]
}

// Index returns the zero-based position of the active step.
func (s *Steps) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Next advances one step. It returns false on the last step.
func (s *Steps) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == len(s.steps)-1 {
		return false
	}
	s.current++
	return true
}

// Back goes one step back. It returns false on the first step.
func (s *Steps) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == 0 {
		return false
	}
	s.current--
	return true
}

// GoTo jumps to step.
func (s *Steps) GoTo(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.steps, step)
	if i < 0 {
		return ErrUnknownStep
	}
	s.current = i
	return nil
}

// IsLast reports whether the active step is the final one.
func (s *Steps) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == len(s.steps)-1
}
