package engine

import "fmt"

// PropsAuxFn recomputes a module's derived quantities on the given state.
// Called once before the run, once per step, and once per stepper sub-stage
// on the scratch copy.
type PropsAuxFn func(bodies []*Body, ev *Evolve, m *Matrix, iBody int)

// ForceBehaviorFn applies a module's business rules that live outside ODE
// form, e.g. snapping a quantity to zero once a threshold is crossed or
// retiring an equation via Disable.
type ForceBehaviorFn func(bodies []*Body, ev *Evolve, sys *System, m *Matrix, iBody, iModule int)

// BodyCopyFn deep-copies the module-owned scalars of src into dst. The
// engine does not know module field layouts, so scratch copies are
// assembled from the common fields plus every module's copy hook.
type BodyCopyFn func(dst, src *Body)

// Stepper advances the bodies by one step, mutating them in place, and
// returns the timestep actually taken. dt is the previous step's size;
// adaptive steppers recompute it, fixed steppers use the base step.
type Stepper interface {
	Step(bodies []*Body, sys *System, m *Matrix, ev *Evolve, dt float64) float64
}

// Output receives a snapshot of the run at t=0, at every scheduled output
// boundary, and once more on halt. interval is the effective output
// interval for the records written so far.
type Output interface {
	Write(bodies []*Body, sys *System, m *Matrix, time, interval float64) error
}

// Evolve is the context for one integration run. It is constructed for a
// run, threaded through every engine call, and discarded afterwards; there
// is no process-wide control state.
type Evolve struct {
	// Clock.
	Time     float64 // [s], simulation time, always advances forward
	StopTime float64 // [s]

	// Step control.
	BaseStep       float64 // [s], user-configured base timestep
	Eta            float64 // safety fraction applied to the raw bound
	OutputInterval float64 // [s]
	Direction      int     // +1 forward, -1 backward
	Adaptive       bool
	FirstStep      bool // forces the first timestep to BaseStep

	// Direct n-body integration mode; gates KindCartesian votes.
	DirectNBody bool

	// Minimum step for KindFloored slots, in multiples of the local
	// orbital period. Keeps near-equilibrium derivatives from collapsing
	// the timestep.
	MinFloorSteps float64

	// Bookkeeping.
	CurrentDt  float64
	Steps      int // steps since the last output
	TotalSteps int

	// Module hooks, indexed [body][module] in registration order.
	PropsAux      [][]PropsAuxFn
	ForceBehavior [][]ForceBehaviorFn
	BodyCopy      [][]BodyCopyFn
}

// Validate checks the run parameters before integration.
func (ev *Evolve) Validate() error {
	if ev.BaseStep <= 0 {
		return fmt.Errorf("%w: base timestep must be positive, got %g", ErrBadConfig, ev.BaseStep)
	}
	if ev.StopTime <= ev.Time {
		return fmt.Errorf("%w: stop time %g not past start time %g", ErrBadConfig, ev.StopTime, ev.Time)
	}
	if ev.OutputInterval <= 0 {
		return fmt.Errorf("%w: output interval must be positive, got %g", ErrBadConfig, ev.OutputInterval)
	}
	if ev.Adaptive && ev.Eta <= 0 {
		return fmt.Errorf("%w: eta must be positive for adaptive stepping, got %g", ErrBadConfig, ev.Eta)
	}
	if ev.Direction != 1 && ev.Direction != -1 {
		return fmt.Errorf("%w: direction must be +1 or -1, got %d", ErrBadConfig, ev.Direction)
	}
	return nil
}

// PropertiesAuxiliary recomputes the derived quantities every module needs
// before derivatives can be evaluated: the shared orbital properties first,
// then each module's hook in registration order.
func PropertiesAuxiliary(bodies []*Body, sys *System, ev *Evolve, m *Matrix) {
	propsAuxGeneral(bodies)
	for iBody := range bodies {
		for _, fn := range ev.PropsAux[iBody] {
			fn(bodies, ev, m, iBody)
		}
	}
}

// propsAuxGeneral refreshes the mean motion of every orbiting body from its
// semi-major axis; most modules depend on it.
func propsAuxGeneral(bodies []*Body) {
	for i := 1; i < len(bodies); i++ {
		bodies[i].MeanMotion = SemiToMeanMotion(bodies[i].SemiMajor, bodies[0].Mass+bodies[i].Mass)
	}
}

// CopyCommon copies the engine-owned fields of src into dst. Module fields
// are handled by the modules' own BodyCopy hooks.
func CopyCommon(dst, src *Body) {
	dst.Name = src.Name
	dst.Mass = src.Mass
	dst.Age = src.Age
	dst.SemiMajor = src.SemiMajor
	dst.Ecc = src.Ecc
	dst.Obliquity = src.Obliquity
	dst.MeanMotion = src.MeanMotion
	dst.Position = src.Position
	dst.Velocity = src.Velocity
}
