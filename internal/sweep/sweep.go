// Package sweep reruns a system across a grid of timestep relaxation
// factors to check that the adaptive controller has converged.
package sweep

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gekaremi/vplanet/internal/config"
	"github.com/gekaremi/vplanet/internal/setup"
	"github.com/gekaremi/vplanet/internal/sim"
)

// Convergence describes one sweep: the same configuration run once per
// eta value, tracking a single output column of a single body.
type Convergence struct {
	Config *config.Config
	Etas   []float64
	Body   int
	Column string
}

// Result is the outcome of one run of the sweep. Error is the relative
// drift of the final value against the tightest eta in the grid.
type Result struct {
	Eta    float64
	Final  float64
	Steps  int
	Halted bool
	Error  float64
}

// Run executes the sweep, tightest eta first so every looser run has a
// reference to compare against. The context is consulted between steps
// of each run.
func (c *Convergence) Run(ctx context.Context) ([]Result, error) {
	if len(c.Etas) == 0 {
		return nil, fmt.Errorf("sweep: no eta values")
	}
	if c.Column == "" {
		c.Column = "mass"
	}

	etas := append([]float64(nil), c.Etas...)
	sort.Float64s(etas)

	results := make([]Result, 0, len(etas))
	var reference float64

	for i, eta := range etas {
		res, err := c.runOne(ctx, eta)
		if err != nil {
			return results, fmt.Errorf("sweep eta=%g: %w", eta, err)
		}
		if i == 0 {
			reference = res.Final
		}
		if reference != 0 {
			res.Error = math.Abs(res.Final-reference) / math.Abs(reference)
		} else {
			res.Error = math.Abs(res.Final - reference)
		}
		results = append(results, res)
	}

	return results, nil
}

func (c *Convergence) runOne(ctx context.Context, eta float64) (Result, error) {
	cfg := *c.Config
	cfg.Bodies = append([]config.BodyConfig(nil), c.Config.Bodies...)
	cfg.System.Eta = eta
	cfg.System.Adaptive = true

	ev, err := setup.Build(&cfg)
	if err != nil {
		return Result{}, err
	}

	rec := sim.NewRecorder(ev.Bodies)
	ev.Outputs = append(ev.Outputs, rec)

	if err := ev.Start(); err != nil {
		return Result{}, err
	}
	if err := ev.Run(ctx); err != nil {
		return Result{}, err
	}

	vals, err := rec.Column(c.Body, c.Column)
	if err != nil {
		return Result{}, err
	}
	if len(vals) == 0 {
		return Result{}, fmt.Errorf("no output rows")
	}

	return Result{
		Eta:    eta,
		Final:  vals[len(vals)-1],
		Steps:  ev.Ev.TotalSteps + ev.Ev.Steps,
		Halted: ev.Halted(),
	}, nil
}
