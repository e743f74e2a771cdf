package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEta            = 0.01
	DefaultStopAge        = 4.6e9 // years
	DefaultOutputInterval = 1e6   // years
	DefaultBaseStep       = 100.0 // years
	DefaultMinFloorSteps  = 10.0
	DefaultSatXUVFrac     = 1e-3 // saturated L_XUV / L_bol
	DefaultSatXUVTime     = 1e8  // years
	DefaultXUVBeta        = 1.23
	DefaultFlowTemp       = 400.0 // K
	DefaultXFrac          = 1.0
	DefaultAtmXAbsEff     = 0.15
)

// Config is the on-disk description of a run. All user-facing quantities
// carry astronomer units (solar and Earth masses, AU, years, terrestrial
// oceans); conversion to SI happens when the run is assembled.
type Config struct {
	System SystemConfig `yaml:"system"`
	Bodies []BodyConfig `yaml:"bodies"`
}

type SystemConfig struct {
	Name           string  `yaml:"name"`
	Integrator     string  `yaml:"integrator"`
	Eta            float64 `yaml:"eta"`
	StopAge        float64 `yaml:"stop_age"`        // years
	OutputInterval float64 `yaml:"output_interval"` // years
	BaseStep       float64 `yaml:"base_step"`       // years
	Adaptive       bool    `yaml:"adaptive"`
	Backward       bool    `yaml:"backward"`
	MinFloorSteps  float64 `yaml:"min_floor_steps"`
}

// BodyConfig describes one body. Fields that only one module reads are
// ignored when that module is absent from Modules.
type BodyConfig struct {
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`

	MassSun     float64 `yaml:"mass_sun"`
	MassEarth   float64 `yaml:"mass_earth"`
	RadiusSun   float64 `yaml:"radius_sun"`
	RadiusEarth float64 `yaml:"radius_earth"`
	AgeYears    float64 `yaml:"age"`
	SemiAU      float64 `yaml:"semi_au"`
	Ecc         float64 `yaml:"ecc"`
	Obliquity   float64 `yaml:"obliquity"` // radians
	RotPerDays  float64 `yaml:"rot_per"`
	RadGyra     float64 `yaml:"rad_gyra"`

	// Stellar.
	StellarModel  string  `yaml:"stellar_model"` // none, const, track
	WindModel     string  `yaml:"wind_model"`    // none, reiners, skumanich
	XUVModel      string  `yaml:"xuv_model"`     // const, ribas, reiners
	LuminositySun float64 `yaml:"luminosity_sun"`
	TemperatureK  float64 `yaml:"temperature"`
	EvolveRG      bool    `yaml:"evolve_rad_gyra"`
	RossbyCut     bool    `yaml:"rossby_cut"`
	SatXUVFrac    float64 `yaml:"sat_xuv_frac"`
	SatXUVTimeYrs float64 `yaml:"sat_xuv_time"`
	XUVBeta       float64 `yaml:"xuv_beta"`

	// Atmospheric escape.
	SurfaceWaterTO   float64 `yaml:"surface_water_to"` // terrestrial oceans
	OxygenKg         float64 `yaml:"oxygen_kg"`
	EnvelopeEarth    float64 `yaml:"envelope_earth"`
	MinWaterTO       float64 `yaml:"min_water_to"`
	MinEnvelopeEarth float64 `yaml:"min_envelope_earth"`
	XFrac            float64 `yaml:"xfrac"`
	AtmXAbsEffH      float64 `yaml:"atm_x_abs_eff_h"`
	AtmXAbsEffH2O    float64 `yaml:"atm_x_abs_eff_h2o"`
	BolmontEff       bool    `yaml:"bolmont_eff"`
	FlowTempK        float64 `yaml:"flow_temp"`
	JeansTimeYears   float64 `yaml:"jeans_time"`
	WaterLossModel   string  `yaml:"water_loss_model"` // lbexact, lb15
	HaltDesiccated   bool    `yaml:"halt_desiccated"`
	HaltEnvelopeGone bool    `yaml:"halt_envelope_gone"`
}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Name:           "system",
			Integrator:     "rk4",
			Eta:            DefaultEta,
			StopAge:        DefaultStopAge,
			OutputInterval: DefaultOutputInterval,
			BaseStep:       DefaultBaseStep,
			Adaptive:       true,
			MinFloorSteps:  DefaultMinFloorSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the assembler cannot turn into a run.
func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return fmt.Errorf("config: no bodies")
	}
	if c.System.Eta <= 0 {
		return fmt.Errorf("config: eta must be positive, got %g", c.System.Eta)
	}
	if c.System.StopAge <= 0 {
		return fmt.Errorf("config: stop_age must be positive, got %g", c.System.StopAge)
	}
	if c.System.OutputInterval <= 0 {
		return fmt.Errorf("config: output_interval must be positive, got %g", c.System.OutputInterval)
	}
	if c.System.BaseStep <= 0 {
		return fmt.Errorf("config: base_step must be positive, got %g", c.System.BaseStep)
	}
	for i, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("config: body %d has no name", i)
		}
		if b.MassSun == 0 && b.MassEarth == 0 {
			return fmt.Errorf("config: body %s has no mass", b.Name)
		}
		if i > 0 && b.SemiAU <= 0 {
			return fmt.Errorf("config: body %s needs a semi-major axis", b.Name)
		}
		if len(b.Modules) == 0 {
			return fmt.Errorf("config: body %s has no modules", b.Name)
		}
	}
	return nil
}
