package montecarlo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidTrials indicates a trial count that is zero or negative.
	ErrInvalidTrials = errors.New("montecarlo: trial count must be positive")

	// ErrNegativeStdDev indicates an input distribution with negative spread.
	ErrNegativeStdDev = errors.New("montecarlo: negative standard deviation")

	// ErrUnknownInput indicates an input quantity name outside the fixed six.
	ErrUnknownInput = errors.New("montecarlo: unknown input quantity")

	// ErrNonFinite indicates a trial whose lift evaluated to NaN or Inf.
	ErrNonFinite = errors.New("montecarlo: non-finite lift (NaN or Inf detected)")

	// ErrInvalidReplicates indicates an ensemble with no replicates.
	ErrInvalidReplicates = errors.New("montecarlo: replicate count must be positive")
)

// TrialError wraps an error with the trial that produced it.
type TrialError struct {
	Trial      int
	Conditions Conditions
	Lift       float64
	Wrapped    error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d (lift=%v): %v", e.Trial, e.Lift, e.Wrapped)
}

func (e *TrialError) Unwrap() error {
	return e.Wrapped
}
