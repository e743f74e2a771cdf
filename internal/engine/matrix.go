package engine

import "fmt"

// VarKind determines how a variable is integrated and how it votes in
// timestep selection. The switch statements over VarKind in this package
// and in the steppers are exhaustive; adding a kind without updating them
// is a compile-time event, not a silent fall-through.
type VarKind int

const (
	// KindExplicit variables are computed outright as a function of age.
	// Their single equation returns the value, not a rate.
	KindExplicit VarKind = iota

	// KindDeriv is the ordinary additive time derivative.
	KindDeriv

	// KindPolar marks an angle-like derivative that may wrap. Its timestep
	// vote is scaled by the governing amplitude; an amplitude of exactly
	// zero casts no vote.
	KindPolar

	// KindSinusoid variables are explicit sinusoidal components (h, k, p,
	// q-like). Single-valued, like KindExplicit.
	KindSinusoid

	// KindAux variables are integrated bookkeeping quantities (lost energy,
	// lost angular momentum). They ride in the matrix but never vote on the
	// timestep.
	KindAux

	// KindCartesian marks one component of a position/velocity pair for
	// direct n-body integration. Votes |r|/|v| while direct integration is
	// active.
	KindCartesian

	// KindFloored is a derivative whose timestep vote is clamped to a
	// configured minimum multiple of the local orbital period.
	KindFloored

	// KindTimeFunc variables are explicit functions of time living outside
	// the matrix proper. Single-valued; their vote is the time of the next
	// scheduled output.
	KindTimeFunc
)

// singleValued reports whether a kind admits at most one equation.
func (k VarKind) singleValued() bool {
	return k == KindExplicit || k == KindSinusoid || k == KindTimeFunc
}

// Assigned reports whether a stepper writes the equation result straight
// into the variable instead of integrating it.
func (k VarKind) Assigned() bool {
	return k == KindExplicit || k == KindSinusoid || k == KindTimeFunc
}

// Rule is a module-supplied derivative or value function. It must be a pure
// function of the passed state; deps lists the body indices it may read,
// with the owning body first.
type Rule func(bodies []*Body, sys *System, deps []int) float64

// Slot resolves the scalar a variable governs within a given body. Keeping
// the indirection behind a function lets the same variable bind to the
// authoritative bodies and to a scratch copy.
type Slot func(*Body) *float64

// Equation is one module's contribution to a variable.
type Equation struct {
	Module   string
	Kind     VarKind
	Deps     []int
	Fn       Rule
	Value    float64 // latest result of Fn, filled by Evaluate
	disabled bool
}

// Disable removes the equation from further evaluation. Its cached value is
// pinned to Tiny, matching a derivative that has shut off. Used by force
// behaviors that retire a variable mid-run.
func (e *Equation) Disable() {
	e.disabled = true
	e.Value = Tiny
}

// Disabled reports whether the equation has been retired.
func (e *Equation) Disabled() bool { return e.disabled }

// Variable is one named scalar slot of one body.
type Variable struct {
	Name string
	Kind VarKind
	Slot Slot

	// Amp yields the governing amplitude for KindPolar slots, e.g.
	// sin(obliquity) for the obliquity direction cosines or the
	// eccentricity for h and k. Zero means the slot casts no timestep
	// vote. Nil falls back to a unit amplitude.
	Amp func(*Body) float64

	Eqns     []*Equation
	Combined float64 // latest combined derivative, filled by the stepper
}

// Sum returns the summed equation values; for single-valued kinds this is
// just the one equation's result.
func (v *Variable) Sum() float64 {
	total := 0.0
	for _, eq := range v.Eqns {
		total += eq.Value
	}
	return total
}

// AddEquation appends a contributor to the variable. Registration order is
// evaluation order.
func (v *Variable) AddEquation(eq *Equation) *Equation {
	v.Eqns = append(v.Eqns, eq)
	return eq
}

// Matrix is the per-body registry of variables and their equations,
// together with the cache of the latest derivative/value results. It is
// built once at setup and verified before the first step.
type Matrix struct {
	Vars [][]*Variable // Vars[iBody], registration order
}

// NewMatrix returns an empty matrix for the given number of bodies.
func NewMatrix(numBodies int) *Matrix {
	return &Matrix{Vars: make([][]*Variable, numBodies)}
}

// NumBodies returns the number of body slots in the matrix.
func (m *Matrix) NumBodies() int { return len(m.Vars) }

// AddVariable registers a slot for a body and returns it for equation
// attachment.
func (m *Matrix) AddVariable(iBody int, v *Variable) *Variable {
	m.Vars[iBody] = append(m.Vars[iBody], v)
	return v
}

// Lookup finds a body's variable by name, or nil.
func (m *Matrix) Lookup(iBody int, name string) *Variable {
	for _, v := range m.Vars[iBody] {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Verify checks the registry for configuration errors before a run. A
// single-valued variable with more than one equation is fatal: the run must
// not start with an inconsistent matrix.
func (m *Matrix) Verify() error {
	for iBody, vars := range m.Vars {
		for _, v := range vars {
			if v.Slot == nil {
				return fmt.Errorf("engine: variable %q of body %d has no slot: %w", v.Name, iBody, ErrBadRegistration)
			}
			if len(v.Eqns) == 0 {
				return fmt.Errorf("engine: variable %q of body %d has no equations: %w", v.Name, iBody, ErrBadRegistration)
			}
			if v.Kind.singleValued() && len(v.Eqns) > 1 {
				return fmt.Errorf("engine: %d equations claim single-valued variable %q of body %d: %w",
					len(v.Eqns), v.Name, iBody, ErrOverdetermined)
			}
			for _, eq := range v.Eqns {
				if eq.Fn == nil {
					return fmt.Errorf("engine: equation from %q on %q of body %d has no rule: %w",
						eq.Module, v.Name, iBody, ErrBadRegistration)
				}
				if len(eq.Deps) == 0 {
					return fmt.Errorf("engine: equation from %q on %q of body %d has an empty dependency list: %w",
						eq.Module, v.Name, iBody, ErrBadRegistration)
				}
			}
		}
	}
	return nil
}

// Evaluate fills every equation's value cache from the given state. It
// never mutates body state; applying the results is the stepper's job.
func (m *Matrix) Evaluate(bodies []*Body, sys *System) {
	for _, vars := range m.Vars {
		for _, v := range vars {
			for _, eq := range v.Eqns {
				if eq.disabled {
					eq.Value = Tiny
					continue
				}
				eq.Value = eq.Fn(bodies, sys, eq.Deps)
			}
		}
	}
}

// Clone builds a structurally identical matrix with its own value caches.
// Rules, slots, and dependency lists are shared; they are read-only during
// integration. The clone serves as the scratch matrix for multi-stage
// steppers.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(len(m.Vars))
	for iBody, vars := range m.Vars {
		for _, v := range vars {
			cv := &Variable{Name: v.Name, Kind: v.Kind, Slot: v.Slot, Amp: v.Amp}
			for _, eq := range v.Eqns {
				cv.Eqns = append(cv.Eqns, &Equation{
					Module: eq.Module, Kind: eq.Kind, Deps: eq.Deps, Fn: eq.Fn,
					Value: eq.Value, disabled: eq.disabled,
				})
			}
			c.AddVariable(iBody, cv)
		}
	}
	return c
}

// SyncFrom copies the cached values and disabled flags from src. Called at
// the start of every step that uses a scratch matrix, so a mid-run Disable
// on the authoritative matrix propagates and no stale value survives across
// steps.
func (m *Matrix) SyncFrom(src *Matrix) {
	for iBody, vars := range m.Vars {
		for iVar, v := range vars {
			sv := src.Vars[iBody][iVar]
			v.Combined = sv.Combined
			for iEqn, eq := range v.Eqns {
				eq.Value = sv.Eqns[iEqn].Value
				eq.disabled = sv.Eqns[iEqn].disabled
			}
		}
	}
}
