// Package modules holds the pluggable physics modules. A module
// contributes equations to the update matrix, hooks for derived
// quantities and out-of-ODE behavior, a deep-copy routine for its
// body fields, and halt predicates. The engine never looks inside a
// module; everything flows through these interfaces.
package modules

import (
	"fmt"

	"github.com/gekaremi/vplanet/internal/engine"
)

// Module is one physics component attached to a body.
type Module interface {
	Name() string

	// Register adds the module's variables and equations for body iBody.
	Register(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, iBody int) error

	// PropsAux recomputes derived quantities before derivatives are
	// evaluated; runs on scratch copies during sub-stages too.
	PropsAux(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int)

	// ForceBehavior applies rules outside ODE form after each step.
	ForceBehavior(bodies []*engine.Body, ev *engine.Evolve, sys *engine.System, m *engine.Matrix, iBody, iModule int)

	// BodyCopy copies the module-owned fields of src into dst.
	BodyCopy(dst, src *engine.Body)

	// Halts returns the module's termination predicates for body iBody,
	// in a fixed order.
	Halts(bodies []*engine.Body, iBody int) []engine.Halt
}

// ensureVar finds a body's variable by name, registering it first when no
// earlier module claimed it. Modules that share a slot attach further
// equations to the existing entry.
func ensureVar(m *engine.Matrix, iBody int, name string, kind engine.VarKind, slot engine.Slot) *engine.Variable {
	if v := m.Lookup(iBody, name); v != nil {
		return v
	}
	return m.AddVariable(iBody, &engine.Variable{Name: name, Kind: kind, Slot: slot})
}

// New returns the module selected by name.
func New(name string) (Module, error) {
	switch name {
	case "stellar":
		return NewStellar(), nil
	case "atmesc":
		return NewAtmEsc(), nil
	default:
		return nil, fmt.Errorf("unknown module: %s", name)
	}
}
