package modules

import (
	"math"
	"testing"

	"github.com/gekaremi/vplanet/internal/engine"
)

func trackStar() *engine.Body {
	return &engine.Body{
		Name:         "star",
		Mass:         engine.MSun,
		Age:          1e7 * engine.YearSec,
		RotRate:      2 * math.Pi / (10 * engine.DaySec),
		RadGyra:      0.45,
		StellarModel: StellarModelTrack,
		WindModel:    WindReiners,
		XUVModel:     XUVRibas,
		EvolveRG:     true,
		SatXUVFrac:   1e-3,
		SatXUVTime:   1e8 * engine.YearSec,
		XUVBeta:      1.23,
	}
}

func TestTrackContraction(t *testing.T) {
	// Pre-main-sequence stars shrink and dim as they age.
	r1 := trackRadius(5e6*engine.YearSec, engine.MSun)
	r2 := trackRadius(2e7*engine.YearSec, engine.MSun)
	if r2 >= r1 {
		t.Errorf("radius grew along the contraction track: %g -> %g", r1, r2)
	}
	l1 := trackLuminosity(5e6*engine.YearSec, engine.MSun)
	l2 := trackLuminosity(2e7*engine.YearSec, engine.MSun)
	if l2 >= l1 {
		t.Errorf("luminosity grew along the contraction track: %g -> %g", l1, l2)
	}

	// Contraction ends at the main-sequence values and holds there.
	rEnd := trackRadius(5e9*engine.YearSec, engine.MSun)
	if rEnd != msRadius(engine.MSun) {
		t.Errorf("settled radius = %g, want %g", rEnd, msRadius(engine.MSun))
	}
	if d := trackRadiusDeriv(5e9*engine.YearSec, engine.MSun); d != 0 {
		t.Errorf("settled radius still changing: %g", d)
	}
}

func TestTrackRadGyraDecays(t *testing.T) {
	rg1 := trackRadGyra(5e6*engine.YearSec, engine.MSun)
	rg2 := trackRadGyra(1e9*engine.YearSec, engine.MSun)
	if rg2 >= rg1 {
		t.Errorf("radius of gyration grew: %g -> %g", rg1, rg2)
	}
	if rg2 < radGyraMS {
		t.Errorf("radius of gyration %g below the main-sequence value", rg2)
	}
}

func TestWindTorqueReiners(t *testing.T) {
	b := trackStar()
	b.Radius = engine.RSun
	b.RotPer = engine.FreqToPer(b.RotRate)

	fast := windTorque(b)
	if fast <= 0 {
		t.Fatalf("no torque on a fast rotator: %g", fast)
	}

	// Below the critical frequency the torque picks up a (w/wcrit)^4
	// suppression, so the ratio falls much faster than linearly.
	slow := *b
	slow.RotRate = omegaCritRM / 4
	slow.RotPer = engine.FreqToPer(slow.RotRate)
	slowTorque := windTorque(&slow)

	linear := fast * slow.RotRate / b.RotRate
	if slowTorque >= linear {
		t.Errorf("unsaturated torque %g not suppressed below linear %g", slowTorque, linear)
	}
}

func TestWindTorqueSkumanich(t *testing.T) {
	b := trackStar()
	b.WindModel = WindSkumanich
	b.Radius = engine.RSun
	b.RotPer = engine.FreqToPer(b.RotRate)

	inertia := b.Mass * b.RadGyra * b.RadGyra * b.Radius * b.Radius
	w := b.RotRate
	want := inertia * w * w * w / (2 * tauBrakeSun * omegaSun * omegaSun)
	if got := windTorque(b); math.Abs(got-want)/want > 1e-12 {
		t.Errorf("skumanich torque = %g, want %g", got, want)
	}
}

func TestWindTorqueRossbyCut(t *testing.T) {
	b := trackStar()
	b.Radius = engine.RSun
	b.Temperature = 6200
	b.RossbyCut = true

	// A very slow rotator at this temperature sits above the critical
	// Rossby number: braking shuts off.
	b.RotRate = 2 * math.Pi / (200 * engine.DaySec)
	b.RotPer = engine.FreqToPer(b.RotRate)
	if got := windTorque(b); got != engine.Tiny {
		t.Errorf("torque past the Rossby threshold = %g, want Tiny", got)
	}

	// A fast rotator still brakes.
	b.RotRate = 2 * math.Pi / (5 * engine.DaySec)
	b.RotPer = engine.FreqToPer(b.RotRate)
	if got := windTorque(b); got <= engine.Tiny {
		t.Errorf("fast rotator not braking: %g", got)
	}
}

func TestTauCZ(t *testing.T) {
	// Convective turnover time shortens toward earlier spectral types.
	cool := tauCZ(4000)
	hot := tauCZ(6500)
	if cool <= hot {
		t.Errorf("turnover time did not shorten with temperature: %g vs %g", cool, hot)
	}
	// Solar value lands in the usual 10 to 50 day range.
	sun := tauCZ(5780) / engine.DaySec
	if sun < 5 || sun > 60 {
		t.Errorf("solar turnover time = %g d, outside a sane range", sun)
	}
}

func TestLXUVRibas(t *testing.T) {
	s := NewStellar()
	ev := &engine.Evolve{PropsAux: make([][]engine.PropsAuxFn, 1)}

	b := trackStar()
	b.Luminosity = engine.LSun
	b.Radius = engine.RSun

	// Saturated before the saturation time.
	b.Age = 1e7 * engine.YearSec
	s.PropsAux([]*engine.Body{b}, ev, nil, 0)
	if want := b.SatXUVFrac * b.Luminosity; b.LXUV != want {
		t.Errorf("saturated LXUV = %g, want %g", b.LXUV, want)
	}

	// Decaying afterwards.
	b.Age = 1e9 * engine.YearSec
	s.PropsAux([]*engine.Body{b}, ev, nil, 0)
	if b.LXUV >= b.SatXUVFrac*b.Luminosity {
		t.Errorf("LXUV did not decay past saturation: %g", b.LXUV)
	}
	if b.LXUV <= 0 {
		t.Errorf("LXUV not positive: %g", b.LXUV)
	}
}

func TestLXUVReinersTakesLesser(t *testing.T) {
	s := NewStellar()
	ev := &engine.Evolve{PropsAux: make([][]engine.PropsAuxFn, 1)}

	b := trackStar()
	b.XUVModel = XUVReiners
	b.Luminosity = engine.LSun
	b.RotRate = 2 * math.Pi / (25 * engine.DaySec)

	s.PropsAux([]*engine.Body{b}, ev, nil, 0)

	per := engine.FreqToPer(b.RotRate) / engine.DaySec
	lxRay := 1e-7 * math.Pow(10, 30.71-2.01*math.Log10(per))
	lxSat := b.Luminosity * math.Pow(10, -3.12-0.11*math.Log10(per))
	want := math.Min(lxRay, lxSat)
	if math.Abs(b.LXUV-want)/want > 1e-12 {
		t.Errorf("LXUV = %g, want lesser of %g and %g", b.LXUV, lxRay, lxSat)
	}
}

func TestStellarRegisterAndDerivatives(t *testing.T) {
	b := trackStar()
	bodies := []*engine.Body{b}
	sys := &engine.System{}
	m := engine.NewMatrix(1)

	s := NewStellar()
	if err := s.Register(bodies, sys, m, 0); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("matrix verification failed: %v", err)
	}

	for _, name := range []string{"luminosity", "radius", "temperature", "radgyra", "rotrate", "lostangmom", "losteng"} {
		if m.Lookup(0, name) == nil {
			t.Errorf("variable %s not registered", name)
		}
	}

	// Seed the explicit slots from the track, then evaluate.
	m.Evaluate(bodies, sys)
	for _, v := range m.Vars[0] {
		if v.Kind.Assigned() {
			*v.Slot(b) = v.Sum()
		}
	}
	b.RotPer = engine.FreqToPer(b.RotRate)
	m.Evaluate(bodies, sys)

	if b.Radius <= 0 || b.Luminosity <= 0 || b.Temperature <= 0 {
		t.Fatalf("track seeding failed: R=%g L=%g T=%g", b.Radius, b.Luminosity, b.Temperature)
	}

	// A contracting star with a magnetized wind loses angular momentum
	// through the wind but spins up overall.
	rot := m.Lookup(0, "rotrate")
	if rot.Sum() <= 0 {
		t.Errorf("contraction should dominate the spin derivative, got %g", rot.Sum())
	}
	if lost := m.Lookup(0, "lostangmom").Sum(); lost <= 0 {
		t.Errorf("wind should carry angular momentum, got %g", lost)
	}
}

func TestStellarTrackHalt(t *testing.T) {
	b := trackStar()
	bodies := []*engine.Body{b}

	halts := NewStellar().Halts(bodies, 0)
	if len(halts) != 1 {
		t.Fatalf("expected one halt predicate, got %d", len(halts))
	}

	if halts[0](bodies, nil, nil, 0) {
		t.Error("halt fired inside the track's validity range")
	}
	b.Age = 2e10 * engine.YearSec
	if !halts[0](bodies, nil, nil, 0) {
		t.Error("halt did not fire past the end of the track")
	}

	b.StellarModel = StellarModelConst
	if got := NewStellar().Halts(bodies, 0); got != nil {
		t.Error("constant-model star should have no track halt")
	}
}

func TestModuleFactory(t *testing.T) {
	for _, name := range []string{"stellar", "atmesc"} {
		mod, err := New(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if mod.Name() != name {
			t.Errorf("module name = %s, want %s", mod.Name(), name)
		}
	}
	if _, err := New("eqtide"); err == nil {
		t.Error("expected error for unknown module")
	}
}
