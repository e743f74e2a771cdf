package engine

import "math"

// Physical constants, SI. All internal state is SI; conversions from the
// input units happen at setup time.
const (
	BigG    = 6.67428e-11  // gravitational constant [m^3 kg^-1 s^-2]
	KBoltz  = 1.38064852e-23 // Boltzmann constant [J/K]
	Sigma   = 5.670367e-8  // Stefan-Boltzmann constant [W m^-2 K^-4]
	AtomMass = 1.660538921e-27 // unified atomic mass [kg]

	MSun = 1.988416e30 // solar mass [kg]
	RSun = 6.957e8     // solar radius [m]
	LSun = 3.828e26    // solar luminosity [W]

	MEarth = 5.972186e24 // Earth mass [kg]
	REarth = 6.3781e6    // Earth radius [m]
	TOMass = 1.39e21     // one terrestrial ocean of water [kg]

	AUM     = 1.49597870700e11 // astronomical unit [m]
	DaySec  = 86400.0
	YearSec = 3.15576e7 // Julian year [s]
)

// Huge and Tiny bound the representable timescales. A slot that must not
// constrain the timestep reports Huge; a disabled equation reports Tiny.
const (
	Huge = math.MaxFloat64
	Tiny = 1.0 / math.MaxFloat64
)

// SemiToMeanMotion converts a semi-major axis and total mass to the orbital
// mean motion.
func SemiToMeanMotion(semi, totalMass float64) float64 {
	return math.Sqrt(BigG * totalMass / (semi * semi * semi))
}

// FreqToPer converts an angular frequency to a period.
func FreqToPer(omega float64) float64 {
	return 2 * math.Pi / omega
}
