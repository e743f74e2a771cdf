package integrate

import (
	"math"
	"testing"

	"github.com/gekaremi/vplanet/internal/engine"
)

// decayMatrix registers dM/dt = -k*M on the first body's mass.
func decayMatrix(k float64) *engine.Matrix {
	m := engine.NewMatrix(1)
	m.AddVariable(0, &engine.Variable{
		Name: "mass", Kind: engine.KindDeriv,
		Slot: func(b *engine.Body) *float64 { return &b.Mass },
	}).AddEquation(&engine.Equation{
		Module: "test", Kind: engine.KindDeriv, Deps: []int{0},
		Fn: func(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
			return -k * bodies[deps[0]].Mass
		},
	})
	return m
}

func fixedEvolve(baseStep float64) *engine.Evolve {
	return &engine.Evolve{
		StopTime:       1e6,
		BaseStep:       baseStep,
		Eta:            0.01,
		OutputInterval: 1e6,
		Direction:      1,
		PropsAux:       make([][]engine.PropsAuxFn, 1),
		ForceBehavior:  make([][]engine.ForceBehaviorFn, 1),
		BodyCopy:       make([][]engine.BodyCopyFn, 1),
	}
}

func TestEulerDecay(t *testing.T) {
	bodies := []*engine.Body{{Mass: 1}}
	m := decayMatrix(1)
	ev := fixedEvolve(0.01)
	st := NewEuler()

	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		m.Evaluate(bodies, &engine.System{})
		got := st.Step(bodies, &engine.System{}, m, ev, dt)
		if got != dt {
			t.Fatalf("fixed step returned %g, want %g", got, dt)
		}
	}

	// Forward Euler on y' = -y gives exactly (1-dt)^n.
	want := math.Pow(1-dt, float64(steps))
	if math.Abs(bodies[0].Mass-want) > 1e-12 {
		t.Errorf("mass = %.15g, want %.15g", bodies[0].Mass, want)
	}
	// First-order error against the true solution, about dt/2 relative.
	exact := math.Exp(-1)
	relErr := math.Abs(bodies[0].Mass-exact) / exact
	if relErr > dt {
		t.Errorf("relative error %g too large for dt %g", relErr, dt)
	}
}

func TestEulerAssignsExplicit(t *testing.T) {
	bodies := []*engine.Body{{Luminosity: 1}}
	m := engine.NewMatrix(1)
	m.AddVariable(0, &engine.Variable{
		Name: "luminosity", Kind: engine.KindExplicit,
		Slot: func(b *engine.Body) *float64 { return &b.Luminosity },
	}).AddEquation(&engine.Equation{
		Module: "test", Kind: engine.KindExplicit, Deps: []int{0},
		Fn: func(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
			return 42
		},
	})

	m.Evaluate(bodies, &engine.System{})
	NewEuler().Step(bodies, &engine.System{}, m, fixedEvolve(0.01), 0.01)

	// Assigned, not integrated: no dt scaling.
	if bodies[0].Luminosity != 42 {
		t.Errorf("explicit slot = %g, want 42", bodies[0].Luminosity)
	}
}

func TestEulerAdaptiveClampsToOutput(t *testing.T) {
	bodies := []*engine.Body{{Mass: 1}}
	m := decayMatrix(1)
	ev := fixedEvolve(0.01)
	ev.Adaptive = true
	ev.OutputInterval = 0.005
	ev.Time = 0.002

	dt := NewEuler().Step(bodies, &engine.System{}, m, ev, 1)

	// Timescale is 1 s, eta 0.01 gives 0.01 s, but the output boundary at
	// 0.005 is closer.
	if math.Abs(dt-0.003) > 1e-12 {
		t.Errorf("dt = %g, want 0.003", dt)
	}
	if ev.CurrentDt != dt {
		t.Errorf("CurrentDt = %g, want %g", ev.CurrentDt, dt)
	}
}

func TestEulerFirstStepUsesBaseStep(t *testing.T) {
	bodies := []*engine.Body{{Mass: 1}}
	m := decayMatrix(1e6) // timescale 1e-6, far below the base step
	ev := fixedEvolve(0.01)
	ev.Adaptive = true
	ev.FirstStep = true

	dt := NewEuler().Step(bodies, &engine.System{}, m, ev, 1)
	if dt != ev.BaseStep {
		t.Errorf("first adaptive dt = %g, want base step %g", dt, ev.BaseStep)
	}
}

func TestEulerBackward(t *testing.T) {
	bodies := []*engine.Body{{Mass: 1}}
	m := decayMatrix(1)
	ev := fixedEvolve(0.01)
	ev.Direction = -1

	m.Evaluate(bodies, &engine.System{})
	NewEuler().Step(bodies, &engine.System{}, m, ev, 0.01)

	// Reversed direction grows the decaying quantity.
	if bodies[0].Mass <= 1 {
		t.Errorf("mass = %g, want growth under reversed time", bodies[0].Mass)
	}
}

func TestRegistry(t *testing.T) {
	bodies := []*engine.Body{{Mass: 1}}
	m := decayMatrix(1)

	for _, name := range []string{"euler", "rk4"} {
		st, err := New(name, bodies, m)
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if st == nil {
			t.Errorf("%s: nil stepper", name)
		}
	}

	if _, err := New("leapfrog", bodies, m); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
