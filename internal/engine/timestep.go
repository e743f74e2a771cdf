package engine

import "math"

// floatZero guards the timestep ratios against division by values that are
// zero to within rounding.
func floatZero(x float64) bool {
	return math.Abs(x) < 1e-10
}

// NextOutput returns the absolute time of the next scheduled output after
// time, on the fixed interval grid anchored at t=0.
func NextOutput(time, interval float64) float64 {
	n := math.Floor(time / interval)
	return (n + 1) * interval
}

// ClampTimestep applies the eta safety fraction to the raw minimum
// timescale and caps the result at the time remaining to the next output,
// so an output boundary is never stepped over.
func ClampTimestep(min, untilOutput, eta float64) float64 {
	min = eta * min
	if untilOutput < min {
		min = untilOutput
	}
	return min
}

// AssignTimestep turns the raw minimum timescale into the actual timestep.
// On the very first step the base timestep wins outright, whatever the
// derivatives say, because they may not be numerically settled yet; the
// output cap still applies. The first-step flag is cleared by the driver
// once the step completes, not here, so every consumer of the selection
// sees the same answer within one step.
func AssignTimestep(min, untilOutput float64, ev *Evolve) float64 {
	if ev.FirstStep {
		if untilOutput < ev.BaseStep {
			return untilOutput
		}
		return ev.BaseStep
	}
	return ClampTimestep(min, untilOutput, ev.Eta)
}

// SelectTimestep evaluates every equation into m's cache and returns the
// smallest local timescale across all slots. Each variable votes according
// to its kind; slots in a numerically degenerate state (zero derivative,
// zero value, zero amplitude) abstain rather than lock the timestep.
func SelectTimestep(bodies []*Body, sys *System, m *Matrix, ev *Evolve) float64 {
	min := Huge

	for iBody, vars := range m.Vars {
		b := bodies[iBody]
		for _, v := range vars {
			switch v.Kind {

			case KindExplicit, KindSinusoid:
				now := *v.Slot(b)
				evalEqns(v, bodies, sys)
				total := v.Sum()
				if now == total {
					continue // value is static, no vote
				}
				// The rate is inferred from the change over one base step.
				local := math.Abs(now / ((now - total) / ev.BaseStep))
				if v.Kind == KindSinusoid {
					// Sinusoidal components swing through zero; use the
					// unit-amplitude timescale instead.
					local = math.Abs(1 / ((now - total) / ev.BaseStep))
				}
				if local < min {
					min = local
				}

			case KindAux:
				// Integrated for bookkeeping, never a timestep vote.
				evalEqns(v, bodies, sys)

			case KindTimeFunc:
				evalEqns(v, bodies, sys)
				if local := NextOutput(ev.Time, ev.OutputInterval); local < min {
					min = local
				}

			default:
				// Derivative-driven kinds vote per equation.
				for _, eq := range v.Eqns {
					if !eq.disabled {
						eq.Value = eq.Fn(bodies, sys, eq.Deps)
					} else {
						eq.Value = Tiny
					}

					switch eq.Kind {
					case KindPolar:
						if eq.Value == 0 {
							continue
						}
						amp := 1.0
						if v.Amp != nil {
							amp = v.Amp(b)
						}
						if amp == 0 {
							// An angle pinned at the origin must not lock
							// the run in place.
							continue
						}
						if local := math.Abs(amp / eq.Value); local < min {
							min = local
						}

					case KindFloored:
						now := *v.Slot(b)
						if eq.Value == 0 || now == 0 {
							continue
						}
						local := math.Abs(now / eq.Value)
						if local < min {
							floor := ev.MinFloorSteps * FreqToPer(b.MeanMotion) / ev.Eta
							if local < floor {
								min = floor
							} else {
								min = local
							}
						}

					case KindCartesian:
						if !ev.DirectNBody {
							continue
						}
						r2 := b.Position[0]*b.Position[0] + b.Position[1]*b.Position[1] + b.Position[2]*b.Position[2]
						v2 := b.Velocity[0]*b.Velocity[0] + b.Velocity[1]*b.Velocity[1] + b.Velocity[2]*b.Velocity[2]
						if v2 == 0 {
							continue
						}
						if local := math.Sqrt(r2 / v2); local < min {
							min = local
						}

					default:
						now := *v.Slot(b)
						if floatZero(eq.Value) || floatZero(now) {
							continue
						}
						if local := math.Abs(now / eq.Value); local < min {
							min = local
						}
					}
				}
			}
		}
	}

	return min
}

func evalEqns(v *Variable, bodies []*Body, sys *System) {
	for _, eq := range v.Eqns {
		if eq.disabled {
			eq.Value = Tiny
			continue
		}
		eq.Value = eq.Fn(bodies, sys, eq.Deps)
	}
}
