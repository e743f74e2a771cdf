package config

var Presets = map[string]*Config{
	// Sun-like star spinning down on the contraction track.
	"sun-spindown": {
		System: SystemConfig{
			Name: "sun", Integrator: "rk4", Eta: 0.01,
			StopAge: 4.6e9, OutputInterval: 1e7, BaseStep: 100, Adaptive: true,
			MinFloorSteps: DefaultMinFloorSteps,
		},
		Bodies: []BodyConfig{
			{
				Name: "sun", Modules: []string{"stellar"},
				MassSun: 1.0, AgeYears: 5e6, RotPerDays: 1.0, RadGyra: 0.45,
				StellarModel: "track", WindModel: "reiners", XUVModel: "ribas",
				EvolveRG: true, SatXUVFrac: DefaultSatXUVFrac,
				SatXUVTimeYrs: DefaultSatXUVTime, XUVBeta: DefaultXUVBeta,
			},
		},
	},
	// Ocean-bearing terrestrial planet around an M dwarf, losing water
	// through the extended pre-main-sequence runaway greenhouse.
	"mdwarf-ocean": {
		System: SystemConfig{
			Name: "mdwarf", Integrator: "rk4", Eta: 0.01,
			StopAge: 1e9, OutputInterval: 1e6, BaseStep: 100, Adaptive: true,
			MinFloorSteps: DefaultMinFloorSteps,
		},
		Bodies: []BodyConfig{
			{
				Name: "star", Modules: []string{"stellar"},
				MassSun: 0.12, AgeYears: 5e6, RotPerDays: 1.0, RadGyra: 0.45,
				StellarModel: "track", WindModel: "reiners", XUVModel: "ribas",
				EvolveRG: true, SatXUVFrac: DefaultSatXUVFrac,
				SatXUVTimeYrs: DefaultSatXUVTime, XUVBeta: DefaultXUVBeta,
			},
			{
				Name: "b", Modules: []string{"atmesc"},
				MassEarth: 1.27, RadiusEarth: 1.1, SemiAU: 0.0485,
				SurfaceWaterTO: 5.0, MinWaterTO: 1e-5,
				XFrac: DefaultXFrac, AtmXAbsEffH2O: DefaultAtmXAbsEff,
				AtmXAbsEffH: DefaultAtmXAbsEff, FlowTempK: DefaultFlowTemp,
				JeansTimeYears: 1e10, WaterLossModel: "lbexact",
			},
		},
	},
	// Mini-Neptune boiling off its hydrogen envelope, halting when the
	// envelope is gone.
	"envelope-loss": {
		System: SystemConfig{
			Name: "envloss", Integrator: "rk4", Eta: 0.01,
			StopAge: 1e9, OutputInterval: 1e6, BaseStep: 100, Adaptive: true,
			MinFloorSteps: DefaultMinFloorSteps,
		},
		Bodies: []BodyConfig{
			{
				Name: "star", Modules: []string{"stellar"},
				MassSun: 1.0, RadiusSun: 1.0, AgeYears: 1e7, RotPerDays: 10.0,
				RadGyra: 0.27, LuminositySun: 1.0, TemperatureK: 5780,
				StellarModel: "const", XUVModel: "const", SatXUVFrac: 1e-4,
			},
			{
				Name: "b", Modules: []string{"atmesc"},
				MassEarth: 5.0, RadiusEarth: 2.5, SemiAU: 0.05,
				EnvelopeEarth: 0.1, MinEnvelopeEarth: 1e-4,
				XFrac: DefaultXFrac, AtmXAbsEffH: 0.1, AtmXAbsEffH2O: 0.1,
				FlowTempK: DefaultFlowTemp, JeansTimeYears: 1e10,
				HaltEnvelopeGone: true,
			},
		},
	},
}

// GetPreset returns a copy of a named preset, safe to mutate.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Bodies = append([]BodyConfig(nil), cfg.Bodies...)
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
