package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrBadStateLength indicates an initial state vector of the wrong length.
	ErrBadStateLength = errors.New("dynamo: state vector length mismatch")

	// ErrBadTimestep indicates a non-positive timestep.
	ErrBadTimestep = errors.New("dynamo: timestep must be positive")

	// ErrBadTolerance indicates a non-positive integration tolerance.
	ErrBadTolerance = errors.New("dynamo: tolerance must be positive")

	// ErrStepTooSmall indicates the adaptive timestep fell below minimum
	// without meeting the error tolerance.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
