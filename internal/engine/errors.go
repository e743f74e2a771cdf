package engine

import "errors"

// Configuration errors, detected by Verify before a run starts. Numerical
// degeneracies during integration (zero derivatives, zero angles) are not
// errors; they simply withhold a slot's timestep vote.
var (
	// ErrOverdetermined indicates two equations claiming a single-valued
	// variable.
	ErrOverdetermined = errors.New("engine: single-valued variable has multiple equations")

	// ErrBadRegistration indicates an incomplete variable or equation
	// registration.
	ErrBadRegistration = errors.New("engine: incomplete registration")

	// ErrBadConfig indicates run parameters that cannot drive a step.
	ErrBadConfig = errors.New("engine: invalid run configuration")
)
