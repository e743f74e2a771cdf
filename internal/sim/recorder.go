package sim

import (
	"fmt"

	"github.com/gekaremi/vplanet/internal/engine"
)

// BodyState is the per-body slice of an output record.
type BodyState struct {
	Age              float64
	Mass             float64
	Radius           float64
	Luminosity       float64
	Temperature      float64
	LXUV             float64
	RotRate          float64
	LostAngMom       float64
	LostEng          float64
	SemiMajor        float64
	Ecc              float64
	SurfaceWaterMass float64
	OxygenMass       float64
	EnvelopeMass     float64
}

// Recorder is an in-memory output sink: one row per output record, one
// BodyState per body. The storage and viz layers consume it after the run.
type Recorder struct {
	Names     []string
	Times     []float64
	Intervals []float64
	Rows      [][]BodyState
}

// NewRecorder returns a recorder for the given bodies.
func NewRecorder(bodies []*engine.Body) *Recorder {
	r := &Recorder{}
	for _, b := range bodies {
		r.Names = append(r.Names, b.Name)
	}
	return r
}

// Write appends a snapshot of every body.
func (r *Recorder) Write(bodies []*engine.Body, sys *engine.System, m *engine.Matrix, time, interval float64) error {
	row := make([]BodyState, len(bodies))
	for i, b := range bodies {
		row[i] = BodyState{
			Age:              b.Age,
			Mass:             b.Mass,
			Radius:           b.Radius,
			Luminosity:       b.Luminosity,
			Temperature:      b.Temperature,
			LXUV:             b.LXUV,
			RotRate:          b.RotRate,
			LostAngMom:       b.LostAngMom,
			LostEng:          b.LostEng,
			SemiMajor:        b.SemiMajor,
			Ecc:              b.Ecc,
			SurfaceWaterMass: b.SurfaceWaterMass,
			OxygenMass:       b.OxygenMass,
			EnvelopeMass:     b.EnvelopeMass,
		}
	}
	r.Times = append(r.Times, time)
	r.Intervals = append(r.Intervals, interval)
	r.Rows = append(r.Rows, row)
	return nil
}

// Columns lists the plottable column names.
func Columns() []string {
	return []string{
		"age", "mass", "radius", "luminosity", "temperature", "lxuv",
		"rotrate", "lostangmom", "losteng", "semimajor", "ecc",
		"surfacewater", "oxygen", "envelope",
	}
}

// Column extracts one body's track for a named column.
func (r *Recorder) Column(iBody int, name string) ([]float64, error) {
	if iBody < 0 || len(r.Rows) > 0 && iBody >= len(r.Rows[0]) {
		return nil, fmt.Errorf("no body %d in record", iBody)
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		s := row[iBody]
		switch name {
		case "age":
			out[i] = s.Age
		case "mass":
			out[i] = s.Mass
		case "radius":
			out[i] = s.Radius
		case "luminosity":
			out[i] = s.Luminosity
		case "temperature":
			out[i] = s.Temperature
		case "lxuv":
			out[i] = s.LXUV
		case "rotrate":
			out[i] = s.RotRate
		case "lostangmom":
			out[i] = s.LostAngMom
		case "losteng":
			out[i] = s.LostEng
		case "semimajor":
			out[i] = s.SemiMajor
		case "ecc":
			out[i] = s.Ecc
		case "surfacewater":
			out[i] = s.SurfaceWaterMass
		case "oxygen":
			out[i] = s.OxygenMass
		case "envelope":
			out[i] = s.EnvelopeMass
		default:
			return nil, fmt.Errorf("unknown column: %s", name)
		}
	}
	return out, nil
}
