package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gekaremi/vplanet/internal/sim"
)

type ExportData struct {
	System     string               `json:"system"`
	Integrator string               `json:"integrator"`
	Eta        float64              `json:"eta"`
	Halted     bool                 `json:"halted"`
	Times      []float64            `json:"times"`
	Intervals  []float64            `json:"intervals"`
	Bodies     map[string]BodyTrack `json:"bodies"`
}

// BodyTrack is one body's output columns, keyed by column name.
type BodyTrack map[string][]float64

func exportData(system, integrator string, eta float64, halted bool, rec *sim.Recorder) (*ExportData, error) {
	data := &ExportData{
		System:     system,
		Integrator: integrator,
		Eta:        eta,
		Halted:     halted,
		Times:      rec.Times,
		Intervals:  rec.Intervals,
		Bodies:     make(map[string]BodyTrack, len(rec.Names)),
	}
	for iBody, name := range rec.Names {
		track := make(BodyTrack)
		for _, col := range sim.Columns() {
			vals, err := rec.Column(iBody, col)
			if err != nil {
				return nil, err
			}
			track[col] = vals
		}
		data.Bodies[name] = track
	}
	return data, nil
}

func exportTo(w io.Writer, system, integrator string, eta float64, halted bool, rec *sim.Recorder) error {
	data, err := exportData(system, integrator, eta, halted, rec)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path, system, integrator string, eta float64, halted bool, rec *sim.Recorder) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportTo(file, system, integrator, eta, halted, rec)
}

func ExportJSONStdout(system, integrator string, eta float64, halted bool, rec *sim.Recorder) error {
	return exportTo(os.Stdout, system, integrator, eta, halted, rec)
}

// ExportRun re-reads a stored run from disk and writes it as one JSON
// document.
func (s *Store) ExportRun(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := &ExportData{
		System:     meta.System,
		Integrator: meta.Integrator,
		Eta:        meta.Eta,
		Halted:     meta.Halted,
		Bodies:     make(map[string]BodyTrack, len(meta.Bodies)),
	}

	for _, name := range meta.Bodies {
		header, rows, err := s.LoadBody(runID, name)
		if err != nil {
			return err
		}
		track := make(BodyTrack, len(header))
		for j, col := range header {
			vals := make([]float64, len(rows))
			for i, row := range rows {
				vals[i] = row[j]
			}
			switch col {
			case "time":
				data.Times = vals
			case "interval":
				data.Intervals = vals
			default:
				track[col] = vals
			}
		}
		data.Bodies[name] = track
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
