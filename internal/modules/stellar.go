package modules

import (
	"math"

	"github.com/gekaremi/vplanet/internal/engine"
)

// Stellar tracks and model selectors (Body.StellarModel, .WindModel,
// .XUVModel).
const (
	StellarModelNone = iota
	StellarModelConst
	StellarModelTrack // analytic pre-main-sequence contraction track
)

const (
	WindNone = iota
	WindReiners   // Reiners & Mohanty (2012)
	WindSkumanich // Skumanich (1972)
)

const (
	XUVConst = iota
	XUVRibas   // Ribas et al. (2005) saturated power-law decay
	XUVReiners // Reiners, Schussler & Passegger (2014) X-ray relation
)

const (
	// Track validity. Beyond trackMaxAge the contraction track has no
	// support and the run halts.
	trackMinAge = 1e6 * engine.YearSec
	trackMaxAge = 1e10 * engine.YearSec

	// Central-difference half width for track derivatives: 10 yr, far
	// below any stellar evolution timescale.
	trackDerivEps = 10 * engine.YearSec

	// Fraction of the gravitational binding energy released per unit
	// contraction for an n=3/2 polytrope interior.
	alphaStruct = 0.6

	// Present-day solar rotation state, used to normalize the braking
	// laws.
	omegaSun     = 2.87e-6 // [rad/s], 25.4 d equatorial period
	tauBrakeSun  = 4.57e9 * engine.YearSec
	solarTorque  = 6.3e23 // [N m], Reiners & Mohanty (2012) normalization
	rossbyCrit   = 2.08   // van Saders et al. (2018) braking cutoff

	// Saturation thresholds for the Reiners & Mohanty law.
	omegaCritRM          = 8.56e-6 // [rad/s]
	omegaCritRMConvec    = 1.82e-6 // fully convective stars
	fullyConvectiveMass  = 0.35 * engine.MSun

	// Radius of gyration endpoints for the analytic track.
	radGyraConvective = 0.45 // n=3/2 polytrope
	radGyraMS         = 0.26 // present-day Sun
)

// Stellar evolves a star's luminosity, radius, and temperature along an
// analytic track, spins it down by magnetized winds, and books the lost
// angular momentum and energy.
type Stellar struct{}

func NewStellar() *Stellar {
	return &Stellar{}
}

func (s *Stellar) Name() string { return "stellar" }

func (s *Stellar) Register(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, iBody int) error {
	b := bodies[iBody]
	deps := []int{iBody}

	ensureVar(m, iBody, "luminosity", engine.KindExplicit,
		func(b *engine.Body) *float64 { return &b.Luminosity }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindExplicit, Deps: deps, Fn: s.lumRule})

	ensureVar(m, iBody, "radius", engine.KindExplicit,
		func(b *engine.Body) *float64 { return &b.Radius }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindExplicit, Deps: deps, Fn: s.radiusRule})

	ensureVar(m, iBody, "temperature", engine.KindExplicit,
		func(b *engine.Body) *float64 { return &b.Temperature }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindExplicit, Deps: deps, Fn: s.tempRule})

	if b.EvolveRG {
		ensureVar(m, iBody, "radgyra", engine.KindExplicit,
			func(b *engine.Body) *float64 { return &b.RadGyra }).
			AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindExplicit, Deps: deps, Fn: s.radGyraRule})
	}

	ensureVar(m, iBody, "rotrate", engine.KindDeriv,
		func(b *engine.Body) *float64 { return &b.RotRate }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindDeriv, Deps: deps, Fn: s.rotRateRule})

	ensureVar(m, iBody, "lostangmom", engine.KindAux,
		func(b *engine.Body) *float64 { return &b.LostAngMom }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindAux, Deps: deps, Fn: s.lostAngMomRule})

	ensureVar(m, iBody, "losteng", engine.KindAux,
		func(b *engine.Body) *float64 { return &b.LostEng }).
		AddEquation(&engine.Equation{Module: "stellar", Kind: engine.KindAux, Deps: deps, Fn: s.lostEngRule})

	return nil
}

// PropsAux refreshes the rotation period and the XUV luminosity.
func (s *Stellar) PropsAux(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int) {
	b := bodies[iBody]
	b.RotPer = engine.FreqToPer(b.RotRate)

	switch b.XUVModel {
	case XUVReiners:
		// Unsaturated X-ray regime, Reiners, Schussler & Passegger (2014)
		// eqn (11), against the saturated bolometric fraction; take the
		// lesser. EUV is left out: the Sanz-Forcada extension badly
		// overpredicts for M dwarfs.
		per := b.RotPer / engine.DaySec
		lxRay := 1e-7 * math.Pow(10, 30.71-2.01*math.Log10(per))
		lxSat := b.Luminosity * math.Pow(10, -3.12-0.11*math.Log10(per))
		if lxRay > lxSat {
			lxRay = lxSat
		}
		b.LXUV = lxRay
	case XUVRibas:
		age := b.Age / (1e9 * engine.YearSec)
		tMin := b.SatXUVTime / (1e9 * engine.YearSec)
		if age >= tMin {
			b.LXUV = b.SatXUVFrac * b.Luminosity * math.Pow(age/tMin, -b.XUVBeta)
		} else {
			// No decay before the saturation time.
			b.LXUV = b.SatXUVFrac * b.Luminosity
		}
	default:
		b.LXUV = b.SatXUVFrac * b.Luminosity
	}
}

func (s *Stellar) ForceBehavior(bodies []*engine.Body, ev *engine.Evolve, sys *engine.System, m *engine.Matrix, iBody, iModule int) {
	// Nothing: stellar state has no out-of-ODE rules.
}

func (s *Stellar) BodyCopy(dst, src *engine.Body) {
	dst.Radius = src.Radius
	dst.Luminosity = src.Luminosity
	dst.Temperature = src.Temperature
	dst.LXUV = src.LXUV
	dst.RotRate = src.RotRate
	dst.RotPer = src.RotPer
	dst.RadGyra = src.RadGyra
	dst.LostAngMom = src.LostAngMom
	dst.LostEng = src.LostEng
	dst.StellarModel = src.StellarModel
	dst.WindModel = src.WindModel
	dst.XUVModel = src.XUVModel
	dst.EvolveRG = src.EvolveRG
	dst.RossbyCut = src.RossbyCut
	dst.SatXUVFrac = src.SatXUVFrac
	dst.SatXUVTime = src.SatXUVTime
	dst.XUVBeta = src.XUVBeta
}

// Halts ends the run when the star ages off the analytic track.
func (s *Stellar) Halts(bodies []*engine.Body, iBody int) []engine.Halt {
	if bodies[iBody].StellarModel != StellarModelTrack {
		return nil
	}
	return []engine.Halt{
		func(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int) bool {
			return bodies[iBody].Age > trackMaxAge
		},
	}
}

/*
 * Value functions for the explicit track variables.
 */

func (s *Stellar) lumRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if b.StellarModel == StellarModelTrack {
		return trackLuminosity(b.Age, b.Mass)
	}
	return b.Luminosity
}

func (s *Stellar) radiusRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if b.StellarModel == StellarModelTrack {
		return trackRadius(b.Age, b.Mass)
	}
	return b.Radius
}

func (s *Stellar) tempRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if b.StellarModel == StellarModelTrack {
		l := trackLuminosity(b.Age, b.Mass)
		r := trackRadius(b.Age, b.Mass)
		return math.Pow(l/(4*math.Pi*r*r*engine.Sigma), 0.25)
	}
	return b.Temperature
}

func (s *Stellar) radGyraRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if !b.EvolveRG || b.StellarModel != StellarModelTrack {
		return b.RadGyra
	}
	return trackRadGyra(b.Age, b.Mass)
}

/*
 * Rotation and bookkeeping derivatives.
 */

// rotRateRule combines the wind torque with spin-up from contraction and
// the shrinking radius of gyration, conserving angular momentum.
func (s *Stellar) rotRateRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	inertia := b.Mass * b.RadGyra * b.RadGyra * b.Radius * b.Radius
	dw := -windTorque(b) / inertia
	if b.StellarModel == StellarModelTrack {
		dw += -2 * b.RotRate * trackRadiusDeriv(b.Age, b.Mass) / b.Radius
		if b.EvolveRG {
			dw += -2 * b.RotRate * trackRadGyraDeriv(b.Age, b.Mass) / b.RadGyra
		}
	}
	return dw
}

// lostAngMomRule books the angular momentum carried off by the wind, as a
// positive quantity.
func (s *Stellar) lostAngMomRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	return windTorque(bodies[deps[0]])
}

// lostEngRule books the energy leaving the star: braking against the wind,
// gravitational contraction, and the rotational terms from the changing
// moment of inertia. Stored positive when energy is removed.
func (s *Stellar) lostEngRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	rdot, rgdot := 0.0, 0.0
	if b.StellarModel == StellarModelTrack {
		rdot = trackRadiusDeriv(b.Age, b.Mass)
		if b.EvolveRG {
			rgdot = trackRadGyraDeriv(b.Age, b.Mass)
		}
	}
	brake := b.RotRate * windTorque(b)
	potCon := -alphaStruct * engine.BigG * b.Mass * b.Mass * rdot / (b.Radius * b.Radius)
	rotCon := b.Mass * b.RadGyra * b.RadGyra * b.Radius * rdot * b.RotRate * b.RotRate
	rotRG := b.Mass * b.RadGyra * b.Radius * b.Radius * rgdot * b.RotRate * b.RotRate
	return brake + potCon + rotCon + rotRG
}

// windTorque returns the magnitude of dJ/dt from magnetic braking.
func windTorque(b *engine.Body) float64 {
	if b.WindModel == WindNone {
		return engine.Tiny
	}

	// Braking ceases once the Rossby number exceeds the van Saders et al.
	// (2018) threshold.
	if b.RossbyCut {
		if b.RotPer/tauCZ(b.Temperature) > rossbyCrit {
			return engine.Tiny
		}
	}

	switch b.WindModel {
	case WindReiners:
		omegaCrit := omegaCritRM
		if b.Mass <= fullyConvectiveMass {
			omegaCrit = omegaCritRMConvec
		}
		torque := solarTorque * (b.RotRate / omegaSun) *
			math.Pow(b.Radius/engine.RSun, 16.0/3.0) * math.Pow(b.Mass/engine.MSun, -2.0/3.0)
		if b.RotRate < omegaCrit {
			r := b.RotRate / omegaCrit
			torque *= r * r * r * r
		}
		return torque
	case WindSkumanich:
		inertia := b.Mass * b.RadGyra * b.RadGyra * b.Radius * b.Radius
		w := b.RotRate
		return inertia * w * w * w / (2 * tauBrakeSun * omegaSun * omegaSun)
	default:
		return engine.Tiny
	}
}

// tauCZ is the convective turnover timescale, Cranmer & Saar (2011) eqn
// 36. Valid for 3300 K <= Teff <= 7000 K.
func tauCZ(teff float64) float64 {
	tau := 314.24*math.Exp(-teff/1952.5-math.Pow(teff/6250.0, 18)) + 0.002
	return tau * engine.DaySec
}

/*
 * Analytic pre-main-sequence track. The star contracts along the Hayashi
 * track (R ~ t^-1/3 at roughly constant effective temperature, so
 * L ~ t^-2/3) until it reaches its main-sequence radius, then holds.
 */

// msLuminosity and msRadius are the zero-age main-sequence values from the
// usual single-star scaling relations.
func msLuminosity(mass float64) float64 {
	return engine.LSun * math.Pow(mass/engine.MSun, 4)
}

func msRadius(mass float64) float64 {
	return engine.RSun * math.Pow(mass/engine.MSun, 0.9)
}

// contractTime is the Kelvin-Helmholtz-like duration of the contraction
// phase, longer for lower masses.
func contractTime(mass float64) float64 {
	return 5e7 * engine.YearSec * math.Pow(engine.MSun/mass, 2.5)
}

func trackRadius(age, mass float64) float64 {
	if age < trackMinAge {
		age = trackMinAge
	}
	x := age / contractTime(mass)
	if x < 1 {
		return msRadius(mass) * math.Pow(x, -1.0/3.0)
	}
	return msRadius(mass)
}

func trackLuminosity(age, mass float64) float64 {
	if age < trackMinAge {
		age = trackMinAge
	}
	x := age / contractTime(mass)
	if x < 1 {
		return msLuminosity(mass) * math.Pow(x, -2.0/3.0)
	}
	return msLuminosity(mass)
}

func trackRadGyra(age, mass float64) float64 {
	if age < trackMinAge {
		age = trackMinAge
	}
	return radGyraMS + (radGyraConvective-radGyraMS)*math.Exp(-age/contractTime(mass))
}

func trackRadiusDeriv(age, mass float64) float64 {
	return (trackRadius(age+trackDerivEps, mass) - trackRadius(age-trackDerivEps, mass)) / (2 * trackDerivEps)
}

func trackRadGyraDeriv(age, mass float64) float64 {
	return (trackRadGyra(age+trackDerivEps, mass) - trackRadGyra(age-trackDerivEps, mass)) / (2 * trackDerivEps)
}
