package engine

// Halt is a module-supplied termination predicate, evaluated after every
// step.
type Halt func(bodies []*Body, ev *Evolve, m *Matrix, iBody int) bool

// HaltChecker evaluates halt predicates per body in registration order,
// short-circuiting on the first that fires. Evaluation order is fixed, so
// which predicate ends a run is deterministic.
type HaltChecker struct {
	halts [][]Halt
}

// NewHaltChecker returns a checker with a predicate list per body.
func NewHaltChecker(numBodies int) *HaltChecker {
	return &HaltChecker{halts: make([][]Halt, numBodies)}
}

// Add registers a predicate for a body.
func (h *HaltChecker) Add(iBody int, fn Halt) {
	h.halts[iBody] = append(h.halts[iBody], fn)
}

// Any reports whether any predicate fires for the current state.
func (h *HaltChecker) Any(bodies []*Body, ev *Evolve, m *Matrix) bool {
	for iBody := range h.halts {
		for _, fn := range h.halts[iBody] {
			if fn(bodies, ev, m, iBody) {
				return true
			}
		}
	}
	return false
}
