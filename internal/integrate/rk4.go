package integrate

import "github.com/gekaremi/vplanet/internal/engine"

// RK4 is the classical fourth-order Runge-Kutta stepper, specialized for a
// state vector with heterogeneous variable kinds: explicit-value slots are
// assigned from their stage-0 result and never linearly combined, since
// their stage outputs are absolute values, not rates.
//
// All four stages run against a scratch copy of the bodies and a cloned
// scratch matrix; the authoritative state is written exactly once, after
// stage four. The scratch buffers are allocated once and re-synchronized at
// the start of every step.
type RK4 struct {
	scratch []*engine.Body
	tmp     *engine.Matrix
	stages  [4][][]float64 // [stage][body][variable]
}

// NewRK4 builds the scratch arena for the given bodies and matrix.
func NewRK4(bodies []*engine.Body, m *engine.Matrix) *RK4 {
	r := &RK4{tmp: m.Clone()}
	r.scratch = make([]*engine.Body, len(bodies))
	for i := range bodies {
		r.scratch[i] = &engine.Body{}
	}
	for s := range r.stages {
		r.stages[s] = make([][]float64, len(m.Vars))
		for iBody, vars := range m.Vars {
			r.stages[s][iBody] = make([]float64, len(vars))
		}
	}
	return r
}

// sync refreshes the scratch bodies from the authoritative state, using the
// modules' copy hooks for the fields the engine does not know about, and
// carries over the matrix caches and any mid-run equation disables.
func (r *RK4) sync(bodies []*engine.Body, m *engine.Matrix, ev *engine.Evolve) {
	for i, b := range bodies {
		engine.CopyCommon(r.scratch[i], b)
		for _, cp := range ev.BodyCopy[i] {
			cp(r.scratch[i], b)
		}
	}
	r.tmp.SyncFrom(m)
}

// Step advances the bodies by one RK4 step. The timestep is selected once,
// from the derivatives at the current state, before any sub-stage runs.
func (r *RK4) Step(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, ev *engine.Evolve, dt float64) float64 {
	r.sync(bodies, m, ev)

	// Derivatives at the start of the step, cached in the scratch matrix.
	sel := engine.SelectTimestep(bodies, sys, r.tmp, ev)
	if ev.Adaptive {
		out := engine.NextOutput(ev.Time, ev.OutputInterval)
		dt = engine.AssignTimestep(sel, out-ev.Time, ev)
	} else {
		dt = ev.BaseStep
	}
	ev.CurrentDt = dt

	dir := float64(ev.Direction)

	// Stage one: move the scratch copy to the midpoint.
	r.stage(0, bodies, ev, dir, 0.5*dt)
	engine.PropertiesAuxiliary(r.scratch, sys, ev, r.tmp)
	r.tmp.Evaluate(r.scratch, sys)

	// Stage two: midpoint again, from the first midpoint derivatives.
	r.stage(1, bodies, ev, dir, 0.5*dt)
	engine.PropertiesAuxiliary(r.scratch, sys, ev, r.tmp)
	r.tmp.Evaluate(r.scratch, sys)

	// Stage three: a full step, from the second midpoint derivatives.
	r.stage(2, bodies, ev, dir, dt)
	engine.PropertiesAuxiliary(r.scratch, sys, ev, r.tmp)
	r.tmp.Evaluate(r.scratch, sys)

	// Stage four: derivatives only. Explicit-value slots were finalized by
	// the midpoint stages and are not recomputed here.
	for iBody, vars := range r.tmp.Vars {
		for iVar, v := range vars {
			if v.Kind.Assigned() {
				continue
			}
			r.stages[3][iBody][iVar] = dir * v.Sum()
		}
	}

	// Combine and write the authoritative state, once.
	for iBody, vars := range m.Vars {
		b := bodies[iBody]
		for iVar, v := range vars {
			v.Combined = (r.stages[0][iBody][iVar] + 2*r.stages[1][iBody][iVar] +
				2*r.stages[2][iBody][iVar] + r.stages[3][iBody][iVar]) / 6
			p := v.Slot(b)
			if v.Kind.Assigned() {
				*p = r.stages[0][iBody][iVar]
			} else {
				*p += v.Combined * dt
			}
		}
	}
	return dt
}

// stage records the summed derivatives of the current scratch cache as
// stage s and advances the scratch copy by h from the authoritative state.
// Explicit-value slots receive the stage value directly, so equations that
// depend on them see the refined value at the next evaluation.
func (r *RK4) stage(s int, bodies []*engine.Body, ev *engine.Evolve, dir, h float64) {
	for iBody, vars := range r.tmp.Vars {
		for iVar, v := range vars {
			k := dir * v.Sum()
			r.stages[s][iBody][iVar] = k
			p := v.Slot(r.scratch[iBody])
			if v.Kind.Assigned() {
				*p = k
			} else {
				// Walk off the authoritative value, not the scratch one.
				*p = *v.Slot(bodies[iBody]) + h*k
			}
		}
	}
}
