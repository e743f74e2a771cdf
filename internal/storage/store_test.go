package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekaremi/vplanet/internal/engine"
	"github.com/gekaremi/vplanet/internal/sim"
)

func testRecorder() *sim.Recorder {
	star := &engine.Body{Name: "star", Mass: engine.MSun, Luminosity: engine.LSun}
	planet := &engine.Body{Name: "b", Mass: engine.MEarth, SurfaceWaterMass: 3 * engine.TOMass}
	bodies := []*engine.Body{star, planet}

	rec := sim.NewRecorder(bodies)
	rec.Write(bodies, &engine.System{}, nil, 0, 1e6*engine.YearSec)
	planet.SurfaceWaterMass = 2 * engine.TOMass
	rec.Write(bodies, &engine.System{}, nil, 1e6*engine.YearSec, 1e6*engine.YearSec)
	return rec
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	rec := testRecorder()
	runID, err := st.Save("test", "rk4", 0.01, 1e9, 1e6, false, rec)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.System != "test" {
		t.Errorf("expected system 'test', got '%s'", meta.System)
	}
	if meta.Records != 2 {
		t.Errorf("expected 2 records, got %d", meta.Records)
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1] != "b" {
		t.Errorf("unexpected body list: %v", meta.Bodies)
	}

	header, rows, err := st.LoadBody(runID, "b")
	if err != nil {
		t.Fatalf("load body failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
	if len(header) != len(sim.Columns())+2 {
		t.Errorf("expected %d columns, got %d", len(sim.Columns())+2, len(header))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("test", "euler", 0.01, 1e9, 1e6, true, testRecorder()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
	if !runs[0].Halted {
		t.Error("expected halted flag to round-trip")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("test", "rk4", 0.01, 1e9, 1e6, false, testRecorder())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "star.csv", "b.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	if err := ExportJSON(path, "test", "rk4", 0.01, false, testRecorder()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty export")
	}
}
