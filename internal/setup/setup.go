// Package setup assembles a runnable Evolver from a Config: unit
// conversion, module attachment, matrix registration, and stepper
// selection happen here, in that order.
package setup

import (
	"fmt"
	"math"

	"github.com/gekaremi/vplanet/internal/config"
	"github.com/gekaremi/vplanet/internal/engine"
	"github.com/gekaremi/vplanet/internal/integrate"
	"github.com/gekaremi/vplanet/internal/modules"
	"github.com/gekaremi/vplanet/internal/sim"
)

// Build turns a validated config into a ready-to-start Evolver. The
// returned run still needs Start before stepping.
func Build(cfg *config.Config) (*sim.Evolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bodies := make([]*engine.Body, len(cfg.Bodies))
	mods := make([][]modules.Module, len(cfg.Bodies))
	for i, bc := range cfg.Bodies {
		b, err := makeBody(&bc)
		if err != nil {
			return nil, err
		}
		bodies[i] = b
		for _, name := range bc.Modules {
			mod, err := modules.New(name)
			if err != nil {
				return nil, fmt.Errorf("body %s: %w", bc.Name, err)
			}
			mods[i] = append(mods[i], mod)
		}
	}

	sys := &engine.System{Name: cfg.System.Name}
	for _, b := range bodies {
		sys.TotalMass += b.Mass
	}

	m := engine.NewMatrix(len(bodies))
	halts := engine.NewHaltChecker(len(bodies))
	ev := &engine.Evolve{
		StopTime:       cfg.System.StopAge * engine.YearSec,
		BaseStep:       cfg.System.BaseStep * engine.YearSec,
		Eta:            cfg.System.Eta,
		OutputInterval: cfg.System.OutputInterval * engine.YearSec,
		Direction:      1,
		Adaptive:       cfg.System.Adaptive,
		FirstStep:      true,
		MinFloorSteps:  cfg.System.MinFloorSteps,
		PropsAux:       make([][]engine.PropsAuxFn, len(bodies)),
		ForceBehavior:  make([][]engine.ForceBehaviorFn, len(bodies)),
		BodyCopy:       make([][]engine.BodyCopyFn, len(bodies)),
	}
	if cfg.System.Backward {
		ev.Direction = -1
	}

	for iBody, bodyMods := range mods {
		for _, mod := range bodyMods {
			if err := mod.Register(bodies, sys, m, iBody); err != nil {
				return nil, fmt.Errorf("body %s: register %s: %w", bodies[iBody].Name, mod.Name(), err)
			}
			ev.PropsAux[iBody] = append(ev.PropsAux[iBody], mod.PropsAux)
			ev.ForceBehavior[iBody] = append(ev.ForceBehavior[iBody], mod.ForceBehavior)
			ev.BodyCopy[iBody] = append(ev.BodyCopy[iBody], mod.BodyCopy)
			for _, h := range mod.Halts(bodies, iBody) {
				halts.Add(iBody, h)
			}
		}
	}

	if err := m.Verify(); err != nil {
		return nil, err
	}

	// Seed the assigned slots, e.g. a track star's radius and luminosity
	// at its starting age. Their value functions do not depend on derived
	// quantities, so a bare matrix pass is enough.
	m.Evaluate(bodies, sys)
	for iBody, vars := range m.Vars {
		for _, v := range vars {
			if v.Kind.Assigned() {
				*v.Slot(bodies[iBody]) = v.Sum()
			}
		}
	}

	stepper, err := integrate.New(cfg.System.Integrator, bodies, m)
	if err != nil {
		return nil, err
	}

	return &sim.Evolver{
		Bodies:  bodies,
		Sys:     sys,
		Matrix:  m,
		Ev:      ev,
		Halts:   halts,
		Stepper: stepper,
	}, nil
}

// makeBody converts one body description to SI. Missing module parameters
// take the usual defaults.
func makeBody(bc *config.BodyConfig) (*engine.Body, error) {
	b := &engine.Body{
		Name:      bc.Name,
		Mass:      bc.MassSun*engine.MSun + bc.MassEarth*engine.MEarth,
		Radius:    bc.RadiusSun*engine.RSun + bc.RadiusEarth*engine.REarth,
		Age:       bc.AgeYears * engine.YearSec,
		SemiMajor: bc.SemiAU * engine.AUM,
		Ecc:       bc.Ecc,
		Obliquity: bc.Obliquity,
		RadGyra:   bc.RadGyra,
	}
	if bc.RotPerDays > 0 {
		b.RotPer = bc.RotPerDays * engine.DaySec
		b.RotRate = 2 * math.Pi / b.RotPer
	}
	if b.RadGyra == 0 {
		b.RadGyra = 0.5
	}

	var err error
	b.StellarModel, err = stellarModel(bc.StellarModel)
	if err != nil {
		return nil, fmt.Errorf("body %s: %w", bc.Name, err)
	}
	b.WindModel, err = windModel(bc.WindModel)
	if err != nil {
		return nil, fmt.Errorf("body %s: %w", bc.Name, err)
	}
	b.XUVModel, err = xuvModel(bc.XUVModel)
	if err != nil {
		return nil, fmt.Errorf("body %s: %w", bc.Name, err)
	}
	b.WaterLossModel, err = waterLossModel(bc.WaterLossModel)
	if err != nil {
		return nil, fmt.Errorf("body %s: %w", bc.Name, err)
	}

	b.Luminosity = bc.LuminositySun * engine.LSun
	b.Temperature = bc.TemperatureK
	b.EvolveRG = bc.EvolveRG
	b.RossbyCut = bc.RossbyCut
	b.SatXUVFrac = bc.SatXUVFrac
	b.SatXUVTime = bc.SatXUVTimeYrs * engine.YearSec
	b.XUVBeta = bc.XUVBeta

	b.SurfaceWaterMass = bc.SurfaceWaterTO * engine.TOMass
	b.OxygenMass = bc.OxygenKg
	b.EnvelopeMass = bc.EnvelopeEarth * engine.MEarth
	b.MinSurfaceWaterMass = bc.MinWaterTO * engine.TOMass
	b.MinEnvelopeMass = bc.MinEnvelopeEarth * engine.MEarth
	b.BolmontEff = bc.BolmontEff
	b.HaltDesiccated = bc.HaltDesiccated
	b.HaltEnvGone = bc.HaltEnvelopeGone

	b.XFrac = bc.XFrac
	if b.XFrac == 0 {
		b.XFrac = config.DefaultXFrac
	}
	b.AtmXAbsEffH = bc.AtmXAbsEffH
	if b.AtmXAbsEffH == 0 {
		b.AtmXAbsEffH = config.DefaultAtmXAbsEff
	}
	b.AtmXAbsEffH2O = bc.AtmXAbsEffH2O
	if b.AtmXAbsEffH2O == 0 {
		b.AtmXAbsEffH2O = config.DefaultAtmXAbsEff
	}
	b.FlowTemp = bc.FlowTempK
	if b.FlowTemp == 0 {
		b.FlowTemp = config.DefaultFlowTemp
	}
	b.JeansTime = bc.JeansTimeYears * engine.YearSec
	if b.JeansTime == 0 {
		b.JeansTime = engine.Huge
	}

	return b, nil
}

func stellarModel(s string) (int, error) {
	switch s {
	case "", "none":
		return modules.StellarModelNone, nil
	case "const":
		return modules.StellarModelConst, nil
	case "track":
		return modules.StellarModelTrack, nil
	default:
		return 0, fmt.Errorf("unknown stellar model: %s", s)
	}
}

func windModel(s string) (int, error) {
	switch s {
	case "", "none":
		return modules.WindNone, nil
	case "reiners":
		return modules.WindReiners, nil
	case "skumanich":
		return modules.WindSkumanich, nil
	default:
		return 0, fmt.Errorf("unknown wind model: %s", s)
	}
}

func xuvModel(s string) (int, error) {
	switch s {
	case "", "const":
		return modules.XUVConst, nil
	case "ribas":
		return modules.XUVRibas, nil
	case "reiners":
		return modules.XUVReiners, nil
	default:
		return 0, fmt.Errorf("unknown xuv model: %s", s)
	}
}

func waterLossModel(s string) (int, error) {
	switch s {
	case "", "lbexact":
		return modules.WaterLossLBExact, nil
	case "lb15":
		return modules.WaterLossLB15, nil
	default:
		return 0, fmt.Errorf("unknown water loss model: %s", s)
	}
}
