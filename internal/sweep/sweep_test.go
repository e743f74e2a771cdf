package sweep

import (
	"context"
	"testing"

	"github.com/gekaremi/vplanet/internal/config"
)

func shortSpindown() *config.Config {
	cfg := config.GetPreset("sun-spindown")
	cfg.System.StopAge = 1e5
	cfg.System.OutputInterval = 1e4
	return cfg
}

func TestConvergenceOrdersByEta(t *testing.T) {
	c := &Convergence{
		Config: shortSpindown(),
		Etas:   []float64{0.5, 0.01, 0.1},
		Body:   0,
		Column: "rotrate",
	}
	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Eta <= results[i-1].Eta {
			t.Errorf("results not ordered by eta: %g after %g", results[i].Eta, results[i-1].Eta)
		}
	}
	if results[0].Error != 0 {
		t.Errorf("reference run error = %g, want 0", results[0].Error)
	}
	for _, r := range results {
		if r.Final == 0 {
			t.Errorf("eta %g: final value is zero", r.Eta)
		}
		if r.Steps == 0 {
			t.Errorf("eta %g: no steps taken", r.Eta)
		}
	}
	// A tighter eta takes more, smaller steps.
	if results[0].Steps <= results[len(results)-1].Steps {
		t.Errorf("step counts not decreasing with eta: %d vs %d",
			results[0].Steps, results[len(results)-1].Steps)
	}
}

func TestConvergenceDefaultsAndErrors(t *testing.T) {
	c := &Convergence{Config: shortSpindown()}
	if _, err := c.Run(context.Background()); err == nil {
		t.Error("expected an error for an empty eta grid")
	}

	c = &Convergence{Config: shortSpindown(), Etas: []float64{0.1}, Body: 0, Column: "nope"}
	if _, err := c.Run(context.Background()); err == nil {
		t.Error("expected an error for an unknown column")
	}
}

func TestConvergenceCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Convergence{Config: shortSpindown(), Etas: []float64{0.1}, Body: 0, Column: "rotrate"}
	if _, err := c.Run(ctx); err == nil {
		t.Error("expected a cancellation error")
	}
}
