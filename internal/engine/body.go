package engine

// Body carries the full physical state of one object. Body 0 is the
// primary. Bodies are allocated once at setup and mutated in place for the
// lifetime of the run; the integrator only ever touches their scalars.
//
// Module-specific parameters live here too, mirroring the flat state record
// the physics modules expect. A module only reads and writes the fields it
// registered equations for, plus whatever its dependency list allows.
type Body struct {
	Name string

	// Bulk and orbital state.
	Mass       float64 // [kg]
	Age        float64 // [s]
	Radius     float64 // [m]
	SemiMajor  float64 // [m]
	Ecc        float64
	Obliquity  float64 // [rad]
	MeanMotion float64 // [rad/s], derived each step for non-primary bodies
	RotRate    float64 // [rad/s]
	RotPer     float64 // [s], derived from RotRate
	RadGyra    float64 // radius of gyration, dimensionless

	// Direct n-body state, used only when direct integration is active.
	Position [3]float64 // [m]
	Velocity [3]float64 // [m/s]

	// Stellar state.
	Luminosity  float64 // [W]
	Temperature float64 // [K]
	LXUV        float64 // XUV luminosity [W], derived
	LostAngMom  float64 // angular momentum carried off by the wind [kg m^2/s]
	LostEng     float64 // energy radiated by contraction and braking [J]

	// Stellar model selection and parameters.
	StellarModel   int
	WindModel      int
	XUVModel       int
	EvolveRG       bool
	RossbyCut      bool // stop braking above the critical Rossby number
	SatXUVFrac     float64 // saturated L_XUV / L_bol
	SatXUVTime     float64 // [s], saturation timescale for the decay law
	XUVBeta        float64 // decay exponent

	// Atmospheric escape state.
	SurfaceWaterMass float64 // [kg]
	OxygenMass       float64 // [kg]
	EnvelopeMass     float64 // [kg]

	// Atmospheric escape model selection.
	WaterLossModel int
	BolmontEff     bool // fit the H2O XUV efficiency to the incident flux
	HaltDesiccated bool
	HaltEnvGone    bool

	// Atmospheric escape parameters and derived quantities.
	MinSurfaceWaterMass float64 // [kg], floor below which the surface desiccates
	MinEnvelopeMass     float64 // [kg], floor below which the envelope is gone
	XFrac               float64 // XUV absorption radius in units of Radius
	AtmXAbsEffH         float64 // XUV absorption efficiency for hydrogen
	AtmXAbsEffH2O       float64 // XUV absorption efficiency for water
	FlowTemp            float64 // [K], temperature of the hydrodynamic flow
	JeansTime           float64 // [s], age beyond which envelope escape shuts off
	KTide               float64 // Roche-lobe enhancement factor, derived
	FXUV                float64 // incident XUV flux [W/m^2], derived
	FHRef               float64 // reference hydrogen escape flux, derived
	FHDiffLim           float64 // diffusion-limited hydrogen flux, derived
	MDotWater           float64 // water-driven mass flux [kg/s], derived
	OxygenEta           float64 // oxygen drag parameter, derived
	CrossoverMass       float64 // [kg], heaviest species the flow can drag, derived
	RGDuration          float64 // [s], age at which the runaway greenhouse ended
	Runaway             bool    // in a runaway greenhouse, derived
}

// System holds state shared across bodies that no single body owns.
type System struct {
	Name      string
	TotalMass float64 // [kg]
}
