package integrate

import (
	"fmt"

	"github.com/gekaremi/vplanet/internal/engine"
)

// New returns the stepper selected by name, with its scratch buffers sized
// for the given run.
func New(name string, bodies []*engine.Body, m *engine.Matrix) (engine.Stepper, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(bodies, m), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}
