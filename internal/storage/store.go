// Package storage archives completed runs on disk: one directory per
// run holding metadata.json and the projection trace as trace.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/reactorsim/internal/history"
)

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
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Depletion bool               `json:"depletion"`
	Scram     bool               `json:"scram"`
	Metrics   map[string]float64 `json:"metrics"`
}

var traceHeader = []string{
	"time", "neutrons", "precursors", "fuel_temp", "cool_temp",
	"rod_pos", "reactivity", "xenon", "samarium", "burnup",
}

// Save archives one run and returns its ID.
func (s *Store) Save(scenario string, meta RunMetadata, series []history.Projection) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Scenario = scenario
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
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

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(traceHeader); err != nil {
		return "", err
	}
	for _, p := range series {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 6, 64),
			strconv.FormatFloat(p.Neutrons, 'f', 6, 64),
			strconv.FormatFloat(p.Precursors, 'f', 6, 64),
			strconv.FormatFloat(p.FuelTemp, 'f', 6, 64),
			strconv.FormatFloat(p.CoolTemp, 'f', 6, 64),
			strconv.FormatFloat(p.RodPos, 'f', 6, 64),
			strconv.FormatFloat(p.Reactivity, 'f', 6, 64),
			strconv.FormatFloat(p.Xenon, 'f', 6, 64),
			strconv.FormatFloat(p.Samarium, 'f', 6, 64),
			strconv.FormatFloat(p.Burnup, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every archived run, skipping entries whose
// metadata is missing or unreadable.
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

// LoadTrace reads back an archived projection series.
func (s *Store) LoadTrace(runID string) ([]history.Projection, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []history.Projection{}, nil
	}

	series := make([]history.Projection, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(traceHeader) {
			continue
		}
		vals := make([]float64, len(rec))
		ok := true
		for i, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		series = append(series, history.Projection{
			Time:       vals[0],
			Neutrons:   vals[1],
			Precursors: vals[2],
			FuelTemp:   vals[3],
			CoolTemp:   vals[4],
			RodPos:     vals[5],
			Reactivity: vals[6],
			Xenon:      vals[7],
			Samarium:   vals[8],
			Burnup:     vals[9],
		})
	}

	return series, nil
}
