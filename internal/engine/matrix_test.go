package engine

import (
	"errors"
	"testing"
)

func massSlot(b *Body) *float64 { return &b.Mass }

func constRule(v float64) Rule {
	return func(bodies []*Body, sys *System, deps []int) float64 { return v }
}

func TestVerify(t *testing.T) {
	valid := func() *Matrix {
		m := NewMatrix(1)
		m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot}).
			AddEquation(&Equation{Module: "test", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(1)})
		return m
	}

	if err := valid().Verify(); err != nil {
		t.Fatalf("valid matrix rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Matrix)
		want   error
	}{
		{"nil slot", func(m *Matrix) { m.Vars[0][0].Slot = nil }, ErrBadRegistration},
		{"no equations", func(m *Matrix) { m.Vars[0][0].Eqns = nil }, ErrBadRegistration},
		{"nil rule", func(m *Matrix) { m.Vars[0][0].Eqns[0].Fn = nil }, ErrBadRegistration},
		{"empty deps", func(m *Matrix) { m.Vars[0][0].Eqns[0].Deps = nil }, ErrBadRegistration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			if err := m.Verify(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyOverdetermined(t *testing.T) {
	for _, kind := range []VarKind{KindExplicit, KindSinusoid, KindTimeFunc} {
		m := NewMatrix(1)
		v := m.AddVariable(0, &Variable{Name: "x", Kind: kind, Slot: massSlot})
		v.AddEquation(&Equation{Module: "a", Kind: kind, Deps: []int{0}, Fn: constRule(1)})
		v.AddEquation(&Equation{Module: "b", Kind: kind, Deps: []int{0}, Fn: constRule(2)})

		if err := m.Verify(); !errors.Is(err, ErrOverdetermined) {
			t.Errorf("kind %d: got %v, want ErrOverdetermined", kind, err)
		}
	}

	// Additive kinds may have any number of contributors.
	m := NewMatrix(1)
	v := m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})
	v.AddEquation(&Equation{Module: "a", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(1)})
	v.AddEquation(&Equation{Module: "b", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(2)})
	if err := m.Verify(); err != nil {
		t.Errorf("two contributors on a derivative slot rejected: %v", err)
	}
}

func TestEvaluateAndSum(t *testing.T) {
	bodies := []*Body{{Mass: 10}}
	m := NewMatrix(1)
	v := m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})
	v.AddEquation(&Equation{Module: "a", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(3)})
	v.AddEquation(&Equation{Module: "b", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(-1)})

	m.Evaluate(bodies, &System{})
	if got := v.Sum(); got != 2 {
		t.Errorf("summed derivative = %g, want 2", got)
	}
}

func TestEvaluateDisabled(t *testing.T) {
	bodies := []*Body{{Mass: 10}}
	m := NewMatrix(1)
	v := m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})
	eq := v.AddEquation(&Equation{Module: "a", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(3)})

	eq.Disable()
	m.Evaluate(bodies, &System{})
	if eq.Value != Tiny {
		t.Errorf("disabled equation evaluated to %g, want Tiny", eq.Value)
	}
	if !eq.Disabled() {
		t.Error("equation should report disabled")
	}
}

func TestCloneSharesRulesNotValues(t *testing.T) {
	bodies := []*Body{{Mass: 10}}
	m := NewMatrix(1)
	v := m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})
	v.AddEquation(&Equation{Module: "a", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(5)})
	m.Evaluate(bodies, &System{})

	c := m.Clone()
	if c.Vars[0][0].Eqns[0].Value != 5 {
		t.Errorf("clone did not carry value cache: %g", c.Vars[0][0].Eqns[0].Value)
	}

	// Mutating the clone's cache must not touch the original.
	c.Vars[0][0].Eqns[0].Value = 99
	if m.Vars[0][0].Eqns[0].Value != 5 {
		t.Error("clone shares value cache with original")
	}
}

func TestSyncFromPropagatesDisable(t *testing.T) {
	m := NewMatrix(1)
	v := m.AddVariable(0, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})
	eq := v.AddEquation(&Equation{Module: "a", Kind: KindDeriv, Deps: []int{0}, Fn: constRule(5)})

	scratch := m.Clone()
	eq.Disable()
	scratch.SyncFrom(m)

	if !scratch.Vars[0][0].Eqns[0].Disabled() {
		t.Error("disable did not propagate to the scratch matrix")
	}
	if scratch.Vars[0][0].Eqns[0].Value != Tiny {
		t.Errorf("scratch value = %g, want Tiny", scratch.Vars[0][0].Eqns[0].Value)
	}
}

func TestLookup(t *testing.T) {
	m := NewMatrix(2)
	m.AddVariable(1, &Variable{Name: "mass", Kind: KindDeriv, Slot: massSlot})

	if m.Lookup(0, "mass") != nil {
		t.Error("lookup found a variable on the wrong body")
	}
	if m.Lookup(1, "mass") == nil {
		t.Error("lookup missed a registered variable")
	}
	if m.Lookup(1, "radius") != nil {
		t.Error("lookup found an unregistered name")
	}
}
