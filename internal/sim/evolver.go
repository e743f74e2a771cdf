// Package sim drives a configured run: it owns the step loop, the halt
// protocol, and the output cadence.
package sim

import (
	"context"

	"github.com/gekaremi/vplanet/internal/engine"
)

// Evolver is the top-level integration loop. It is assembled by setup from
// a verified matrix, a stepper, and the modules' hooks, and runs in two
// states: running, then halted or completed.
type Evolver struct {
	Bodies  []*engine.Body
	Sys     *engine.System
	Matrix  *engine.Matrix
	Ev      *engine.Evolve
	Halts   *engine.HaltChecker
	Stepper engine.Stepper
	Outputs []engine.Output

	dt      float64
	timeOut float64
	started bool
	halted  bool
}

// Halted reports whether a halt predicate ended the run early.
func (e *Evolver) Halted() bool { return e.halted }

// Dt returns the size of the last step taken.
func (e *Evolver) Dt() float64 { return e.dt }

// Start validates the run, computes the initial auxiliary properties and
// timestep, and writes the t=0 output record.
func (e *Evolver) Start() error {
	if err := e.Ev.Validate(); err != nil {
		return err
	}
	if err := e.Matrix.Verify(); err != nil {
		return err
	}

	ev := e.Ev
	e.timeOut = engine.NextOutput(ev.Time, ev.OutputInterval)
	engine.PropertiesAuxiliary(e.Bodies, e.Sys, ev, e.Matrix)

	// Derivatives at the start; useful for the initial record even on
	// fixed-step runs.
	dt := engine.SelectTimestep(e.Bodies, e.Sys, e.Matrix, ev)
	if ev.Adaptive {
		dt = engine.AssignTimestep(dt, e.timeOut-ev.Time, ev)
	} else {
		dt = ev.BaseStep
	}
	e.dt = dt
	e.started = true

	return e.write(ev.Time, dt)
}

// Step advances the run by one timestep and reports whether the run is
// over, either by reaching the stop time or by a halt. A halting step still
// completes in full and writes one final, self-consistent output record; no
// age or clock advance happens after it.
func (e *Evolver) Step() (done bool, err error) {
	ev := e.Ev
	if e.halted || ev.Time >= ev.StopTime {
		return true, nil
	}

	e.dt = e.Stepper.Step(e.Bodies, e.Sys, e.Matrix, ev, e.dt)

	// Business rules outside ODE form, per body and module.
	for iBody := range e.Bodies {
		for iModule, fb := range ev.ForceBehavior[iBody] {
			fb(e.Bodies, ev, e.Sys, e.Matrix, iBody, iModule)
		}
	}

	// Refresh the caches so halt predicates and output see derivatives
	// consistent with the post-step state.
	e.Matrix.Evaluate(e.Bodies, e.Sys)

	if e.Halts.Any(e.Bodies, ev, e.Matrix) {
		e.halted = true
		steps := ev.TotalSteps + ev.Steps
		if steps == 0 {
			steps = 1
		}
		if err := e.write(ev.Time, ev.OutputInterval/float64(steps)); err != nil {
			return true, err
		}
		return true, nil
	}

	dir := float64(ev.Direction)
	for _, b := range e.Bodies {
		b.Age += dir * e.dt
	}
	ev.Time += e.dt
	ev.Steps++

	if ev.Time >= e.timeOut {
		if err := e.write(ev.Time, ev.OutputInterval/float64(ev.Steps)); err != nil {
			return false, err
		}
		e.timeOut = engine.NextOutput(ev.Time, ev.OutputInterval)
		ev.TotalSteps += ev.Steps
		ev.Steps = 0
	}

	// Auxiliary properties for the next step; the first call was in Start.
	engine.PropertiesAuxiliary(e.Bodies, e.Sys, ev, e.Matrix)

	if ev.FirstStep {
		ev.FirstStep = false
	}

	return ev.Time >= ev.StopTime, nil
}

// Run executes the loop to completion. The context is only consulted
// between steps; a step, once begun, always finishes.
func (e *Evolver) Run(ctx context.Context) error {
	if !e.started {
		if err := e.Start(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		done, err := e.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (e *Evolver) write(time, interval float64) error {
	for _, out := range e.Outputs {
		if err := out.Write(e.Bodies, e.Sys, e.Matrix, time, interval); err != nil {
			return err
		}
	}
	return nil
}
