// Package integrate provides the fixed-step and adaptive steppers that
// advance a run's bodies through one timestep.
package integrate

import "github.com/gekaremi/vplanet/internal/engine"

// Euler is the first-order stepper: one derivative evaluation, one update.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step applies x += dir * sum(dx/dt) * dt to every derivative-driven slot
// and assigns explicit-value slots outright. With adaptive stepping the
// timestep is re-selected from the freshly evaluated matrix first.
func (e *Euler) Step(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, ev *engine.Evolve, dt float64) float64 {
	if ev.Adaptive {
		out := engine.NextOutput(ev.Time, ev.OutputInterval)
		dt = engine.SelectTimestep(bodies, sys, m, ev)
		dt = engine.AssignTimestep(dt, out-ev.Time, ev)
	}
	ev.CurrentDt = dt

	dir := float64(ev.Direction)
	for iBody, vars := range m.Vars {
		b := bodies[iBody]
		for _, v := range vars {
			p := v.Slot(b)
			if v.Kind == engine.KindExplicit {
				*p = v.Sum()
				continue
			}
			*p += dir * v.Sum() * dt
		}
	}
	return dt
}
