package modules

import (
	"math"

	"github.com/gekaremi/vplanet/internal/engine"
)

// Water loss models (Body.WaterLossModel).
const (
	WaterLossLBExact = iota // Luger & Barnes (2015), exact crossover mass
	WaterLossLB15           // Luger & Barnes (2015), approximate
)

const (
	// Mass ratio of atomic oxygen to atomic hydrogen.
	qOH = 16.0

	// Above this atomic oxygen mixing ratio the flow is oxygen dominated
	// and hydrogen escape is diffusion limited, Schaefer et al. (2016)
	// section 2.2.
	oxygenDomXO = 0.6
)

// AtmEsc drives XUV-powered escape of surface water, the oxygen it leaves
// behind, and any primordial hydrogen envelope. The incident XUV flux
// comes from body 0.
type AtmEsc struct{}

func NewAtmEsc() *AtmEsc {
	return &AtmEsc{}
}

func (a *AtmEsc) Name() string { return "atmesc" }

func (a *AtmEsc) Register(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, iBody int) error {
	b := bodies[iBody]
	deps := []int{iBody}

	if b.SurfaceWaterMass > 0 {
		ensureVar(m, iBody, "surfacewatermass", engine.KindFloored,
			func(b *engine.Body) *float64 { return &b.SurfaceWaterMass }).
			AddEquation(&engine.Equation{Module: "atmesc", Kind: engine.KindFloored, Deps: deps, Fn: a.waterRule})

		ensureVar(m, iBody, "oxygenmass", engine.KindDeriv,
			func(b *engine.Body) *float64 { return &b.OxygenMass }).
			AddEquation(&engine.Equation{Module: "atmesc", Kind: engine.KindDeriv, Deps: deps, Fn: a.oxygenRule})
	}

	if b.EnvelopeMass > 0 {
		ensureVar(m, iBody, "envelopemass", engine.KindDeriv,
			func(b *engine.Body) *float64 { return &b.EnvelopeMass }).
			AddEquation(&engine.Equation{Module: "atmesc", Kind: engine.KindDeriv, Deps: deps, Fn: a.envelopeRule})

		// The bulk mass shrinks with the envelope.
		ensureVar(m, iBody, "mass", engine.KindDeriv,
			func(b *engine.Body) *float64 { return &b.Mass }).
			AddEquation(&engine.Equation{Module: "atmesc", Kind: engine.KindDeriv, Deps: deps, Fn: a.envelopeRule})
	}

	ensureVar(m, iBody, "radius", engine.KindExplicit,
		func(b *engine.Body) *float64 { return &b.Radius }).
		AddEquation(&engine.Equation{Module: "atmesc", Kind: engine.KindExplicit, Deps: deps, Fn: a.radiusRule})

	return nil
}

// PropsAux refreshes the escape state: incident XUV flux, the Roche factor,
// the reference and diffusion-limited hydrogen fluxes, and the active
// escape regime. Everything downstream of the ODEs reads these.
func (a *AtmEsc) PropsAux(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int) {
	b := bodies[iBody]
	primary := bodies[0]

	b.Age = primary.Age

	// Roche-lobe enhancement from the primary.
	xi := math.Cbrt(b.Mass/(3*primary.Mass)) * b.SemiMajor / (b.Radius * b.XFrac)
	if xi > 1 {
		b.KTide = 1 - 3/(2*xi) + 1/(2*xi*xi*xi)
	} else {
		// XUV radius exceeds the Roche lobe. Clamp rather than let the
		// enhancement diverge.
		b.KTide = 1
	}

	b.FXUV = xuvFlux(primary, b)

	if b.BolmontEff {
		b.AtmXAbsEffH2O = xuvEfficiencyBolmont(b.FXUV)
	}

	b.FHRef = (b.AtmXAbsEffH2O * b.FXUV * b.Radius) /
		(4 * engine.BigG * b.Mass * b.KTide * engine.AtomMass)

	g := engine.BigG * b.Mass / (b.Radius * b.Radius)
	xo := oxygenMixingRatio(b.SurfaceWaterMass, b.OxygenMass)
	bDiff := 4.8e19 * math.Pow(b.FlowTemp, 0.75)

	b.FHDiffLim = bDiff * g * engine.AtomMass * (qOH - 1) /
		(engine.KBoltz * b.FlowTemp * (1 + xo/(1-xo)))

	if !a.waterEscapes(primary, b) {
		b.Runaway = false
		b.OxygenEta = 0
		b.CrossoverMass = 0
		b.MDotWater = 0
		return
	}
	b.Runaway = true

	switch b.WaterLossModel {
	case WaterLossLB15:
		x := engine.KBoltz * b.FlowTemp * b.FHRef / (10 * bDiff * g * engine.AtomMass)
		if x < 1 {
			b.OxygenEta = 0
			b.CrossoverMass = engine.AtomMass + 1.5*engine.KBoltz*b.FlowTemp*b.FHRef/(bDiff*g)
		} else {
			b.OxygenEta = (x - 1) / (x + 8)
			b.CrossoverMass = 43.0/3.0*engine.AtomMass + engine.KBoltz*b.FlowTemp*b.FHRef/(6*bDiff*g)
		}
	default:
		// Exact crossover mass, Luger & Barnes (2015) appendix.
		x := (qOH - 1) * (1 - xo) * bDiff * g * engine.AtomMass / (engine.KBoltz * b.FlowTemp)
		if b.FHRef < x {
			b.CrossoverMass = engine.AtomMass +
				(1/(1-xo))*engine.KBoltz*b.FlowTemp*b.FHRef/(bDiff*g)
			b.OxygenEta = 0
		} else {
			num := 1 + (xo/(1-xo))*qOH*qOH
			den := 1 + (xo/(1-xo))*qOH
			b.CrossoverMass = engine.AtomMass*num/den +
				engine.KBoltz*b.FlowTemp*b.FHRef/((1+xo*(qOH-1))*bDiff*g)
			rat := (b.CrossoverMass/engine.AtomMass - qOH) / (b.CrossoverMass/engine.AtomMass - 1)
			b.OxygenEta = 2 * xo / (1 - xo) * rat
		}
	}

	area := 4 * engine.AtomMass * math.Pi * b.Radius * b.Radius * b.XFrac * b.XFrac
	if xo > oxygenDomXO && b.WaterLossModel == WaterLossLBExact {
		// Oxygen dominates the flow: hydrogen escape throttles down to the
		// diffusion limit and oxygen stops dragging along.
		b.OxygenEta = 0
		b.MDotWater = b.FHDiffLim * area
	} else {
		b.MDotWater = b.FHRef * area
	}
}

// ForceBehavior snaps nearly exhausted reservoirs to zero. A lost envelope
// also retires its equations so the timestep no longer chases Tiny
// derivatives.
func (a *AtmEsc) ForceBehavior(bodies []*engine.Body, ev *engine.Evolve, sys *engine.System, m *engine.Matrix, iBody, iModule int) {
	b := bodies[iBody]

	if b.SurfaceWaterMass > 0 && b.SurfaceWaterMass <= b.MinSurfaceWaterMass {
		b.SurfaceWaterMass = 0
	}

	if b.EnvelopeMass > 0 && b.EnvelopeMass <= b.MinEnvelopeMass {
		b.EnvelopeMass = 0
		disableModuleEqns(m, iBody, "envelopemass", "atmesc")
		disableModuleEqns(m, iBody, "mass", "atmesc")
	}
}

func (a *AtmEsc) BodyCopy(dst, src *engine.Body) {
	dst.Radius = src.Radius
	dst.SurfaceWaterMass = src.SurfaceWaterMass
	dst.OxygenMass = src.OxygenMass
	dst.EnvelopeMass = src.EnvelopeMass
	dst.WaterLossModel = src.WaterLossModel
	dst.BolmontEff = src.BolmontEff
	dst.MinSurfaceWaterMass = src.MinSurfaceWaterMass
	dst.MinEnvelopeMass = src.MinEnvelopeMass
	dst.XFrac = src.XFrac
	dst.AtmXAbsEffH = src.AtmXAbsEffH
	dst.AtmXAbsEffH2O = src.AtmXAbsEffH2O
	dst.FlowTemp = src.FlowTemp
	dst.JeansTime = src.JeansTime
	dst.KTide = src.KTide
	dst.FXUV = src.FXUV
	dst.FHRef = src.FHRef
	dst.FHDiffLim = src.FHDiffLim
	dst.MDotWater = src.MDotWater
	dst.OxygenEta = src.OxygenEta
	dst.CrossoverMass = src.CrossoverMass
	dst.RGDuration = src.RGDuration
	dst.Runaway = src.Runaway
}

func (a *AtmEsc) Halts(bodies []*engine.Body, iBody int) []engine.Halt {
	b := bodies[iBody]
	var halts []engine.Halt
	if b.HaltDesiccated {
		halts = append(halts, func(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int) bool {
			return bodies[iBody].SurfaceWaterMass <= bodies[iBody].MinSurfaceWaterMass
		})
	}
	if b.HaltEnvGone {
		halts = append(halts, func(bodies []*engine.Body, ev *engine.Evolve, m *engine.Matrix, iBody int) bool {
			return bodies[iBody].EnvelopeMass <= bodies[iBody].MinEnvelopeMass
		})
	}
	return halts
}

/*
 * Derivatives.
 */

// waterRule drains surface water by photolysis and hydrogen escape;
// oxygen drag slows it down.
func (a *AtmEsc) waterRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if !b.Runaway || b.SurfaceWaterMass <= 0 {
		return 0
	}
	return -(9 / (1 + 8*b.OxygenEta)) * b.MDotWater
}

// oxygenRule accumulates the photolytic oxygen that fails to escape.
func (a *AtmEsc) oxygenRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if !b.Runaway || b.SurfaceWaterMass <= 0 {
		return 0
	}
	if b.WaterLossModel == WaterLossLB15 && b.CrossoverMass >= 16*engine.AtomMass {
		bDiff := 4.8e19 * math.Pow(b.FlowTemp, 0.75)
		return 320 * math.Pi * engine.BigG * engine.AtomMass * engine.AtomMass * bDiff * b.Mass /
			(engine.KBoltz * b.FlowTemp)
	}
	return (8 - 8*b.OxygenEta) / (1 + 8*b.OxygenEta) * b.MDotWater
}

// envelopeRule is the energy-limited hydrogen envelope loss. It returns
// Tiny rather than zero once escape has shut off so the slot stays live in
// the matrix until ForceBehavior retires it.
func (a *AtmEsc) envelopeRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	b := bodies[deps[0]]
	if b.EnvelopeMass <= 0 || b.Age > b.JeansTime {
		return engine.Tiny
	}
	return -b.FHRef * (b.AtmXAbsEffH / b.AtmXAbsEffH2O) *
		(4 * engine.AtomMass * math.Pi * b.Radius * b.Radius * b.XFrac * b.XFrac)
}

func (a *AtmEsc) radiusRule(bodies []*engine.Body, sys *engine.System, deps []int) float64 {
	return bodies[deps[0]].Radius
}

/*
 * Helpers.
 */

// disableModuleEqns retires every equation a module contributed to a slot.
func disableModuleEqns(m *engine.Matrix, iBody int, name, module string) {
	v := m.Lookup(iBody, name)
	if v == nil {
		return
	}
	for _, eq := range v.Eqns {
		if eq.Module == module {
			eq.Disable()
		}
	}
}

// waterEscapes decides whether hydrogen from photolyzed water can escape
// right now. An envelope shields the surface, the cold trap holds below
// the runaway greenhouse limit, and past the Jeans time the flow is no
// longer hydrodynamic.
func (a *AtmEsc) waterEscapes(primary, b *engine.Body) bool {
	if b.EnvelopeMass > 0 {
		if b.RGDuration == 0 && instellation(primary, b) < hzRunawayGreenhouse(primary, b) {
			b.RGDuration = b.Age
		}
		return false
	}
	if instellation(primary, b) < hzRunawayGreenhouse(primary, b) {
		if b.RGDuration == 0 {
			b.RGDuration = b.Age
		}
		return false
	}
	if b.SurfaceWaterMass <= 0 {
		return false
	}
	if b.Age > b.JeansTime {
		return false
	}
	return true
}

func instellation(primary, b *engine.Body) float64 {
	return primary.Luminosity / (4 * math.Pi * b.SemiMajor * b.SemiMajor * math.Sqrt(1-b.Ecc*b.Ecc))
}

func xuvFlux(primary, b *engine.Body) float64 {
	return primary.LXUV / (4 * math.Pi * b.SemiMajor * b.SemiMajor * math.Sqrt(1-b.Ecc*b.Ecc))
}

// oxygenMixingRatio is the atomic oxygen fraction in the upper atmosphere,
// assuming a well-mixed column up to the photolysis layer.
func oxygenMixingRatio(surfaceWater, oxygen float64) float64 {
	nO2 := oxygen / (32 * engine.AtomMass)
	nH2O := surfaceWater / (18 * engine.AtomMass)
	if nH2O > 0 {
		return 1 / (1 + 1/(0.5+nO2/nH2O))
	}
	if nO2 > 0 {
		return 1
	}
	return 0
}

// hzRunawayGreenhouse is the runaway greenhouse instellation limit from a
// log-linear fit in planet mass to the Kopparapu et al. (2014) grid.
func hzRunawayGreenhouse(primary, b *engine.Body) float64 {
	tstar := primary.Temperature - 5780

	logMP := [3]float64{-1.0, 0, 0.69897}
	seffSun := [3]float64{0.99, 1.107, 1.188}
	ca := [3]float64{1.209e-4, 1.332e-4, 1.433e-4}
	cb := [3]float64{1.404e-8, 1.58e-8, 1.707e-8}
	cc := [3]float64{-7.418e-12, -8.308e-12, -8.968e-12}
	cd := [3]float64{-1.713e-15, -1.931e-15, -2.084e-15}

	var seff [3]float64
	for i := 0; i < 3; i++ {
		seff[i] = seffSun[i] + ca[i]*tstar + cb[i]*tstar*tstar +
			cc[i]*math.Pow(tstar, 3) + cd[i]*math.Pow(tstar, 4)
	}
	slope, intercept := linearFit(logMP[:], seff[:])

	return (slope*math.Log10(b.Mass/engine.MEarth) + intercept) *
		engine.LSun / (4 * math.Pi * engine.AUM * engine.AUM)
}

// xuvEfficiencyBolmont fits the H2O XUV escape efficiency to the incident
// flux, after Bolmont et al. (2017) figure 2.
func xuvEfficiencyBolmont(fxuv float64) float64 {
	x := math.Log10(fxuv * 1e3) // erg/cm^2/s
	switch {
	case x >= -2 && x < -1:
		return math.Pow(10, 1.49202*x*x+5.57875*x+2.27482)
	case x >= -1 && x < 0:
		return math.Pow(10, 0.59182134*x*x*x-0.36140798*x*x-0.04011933*x-0.8988)
	case x >= 0 && x <= 5:
		return math.Pow(10, -0.00441536*x*x*x-0.03068399*x*x+0.04946948*x-0.89880083)
	default:
		return 0
	}
}

// linearFit is a least-squares fit y = slope*x + intercept.
func linearFit(x, y []float64) (slope, intercept float64) {
	var xavg, yavg float64
	for i := range x {
		xavg += x[i]
		yavg += y[i]
	}
	xavg /= float64(len(x))
	yavg /= float64(len(x))
	var num, den float64
	for i := range x {
		num += (x[i] - xavg) * (y[i] - yavg)
		den += (x[i] - xavg) * (x[i] - xavg)
	}
	slope = num / den
	intercept = yavg - slope*xavg
	return slope, intercept
}
