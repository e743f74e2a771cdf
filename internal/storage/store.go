package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gekaremi/vplanet/internal/sim"
)

// Store persists finished runs under a base directory, one subdirectory
// per run: metadata.json plus one CSV of output records per body.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string    `json:"id"`
	System         string    `json:"system"`
	Timestamp      time.Time `json:"timestamp"`
	Integrator     string    `json:"integrator"`
	Eta            float64   `json:"eta"`
	StopAge        float64   `json:"stop_age"`
	OutputInterval float64   `json:"output_interval"`
	Halted         bool      `json:"halted"`
	Records        int       `json:"records"`
	Bodies         []string  `json:"bodies"`
}

// Save writes one run. The recorder's times and intervals are in seconds;
// they are stored as-is.
func (s *Store) Save(system, integrator string, eta, stopAge, outputInterval float64, halted bool, rec *sim.Recorder) (string, error) {
	runID := fmt.Sprintf("%s_%d", system, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		System:         system,
		Timestamp:      time.Now(),
		Integrator:     integrator,
		Eta:            eta,
		StopAge:        stopAge,
		OutputInterval: outputInterval,
		Halted:         halted,
		Records:        len(rec.Times),
		Bodies:         rec.Names,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	for iBody, name := range rec.Names {
		if err := s.writeBodyFile(runDir, name, iBody, rec); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeBodyFile(runDir, name string, iBody int, rec *sim.Recorder) error {
	f, err := os.Create(filepath.Join(runDir, name+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append([]string{"time", "interval"}, sim.Columns()...)
	if err := w.Write(header); err != nil {
		return err
	}

	cols := make([][]float64, len(sim.Columns()))
	for i, c := range sim.Columns() {
		cols[i], err = rec.Column(iBody, c)
		if err != nil {
			return err
		}
	}

	for i := range rec.Times {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(rec.Times[i]), formatFloat(rec.Intervals[i]))
		for _, c := range cols {
			row = append(row, formatFloat(c[i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// List returns the metadata of every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadBody reads one body's track back: the header names and the rows,
// times included.
func (s *Store) LoadBody(runID, body string) ([]string, [][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, body+".csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("empty track for %s in run %s", body, runID)
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, err
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}
