package storage

import (
	"testing"

	"github.com/san-kum/reactorsim/internal/history"
)

func sampleSeries() []history.Projection {
	return []history.Projection{
		{Time: 0.0, Neutrons: 1e3, Precursors: 5e5, FuelTemp: 450, CoolTemp: 450, Reactivity: -0.05},
		{Time: 0.5, Neutrons: 2e3, Precursors: 6e5, FuelTemp: 460, CoolTemp: 452, RodPos: 0.25, Reactivity: -0.04},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Dt:        0.005,
		Duration:  100,
		Depletion: true,
		Metrics:   map[string]float64{"peak_power_mw": 210.5},
	}

	runID, err := st.Save("startup", meta, sampleSeries())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Scenario != "startup" {
		t.Errorf("expected scenario 'startup', got '%s'", loaded.Scenario)
	}
	if loaded.Metrics["peak_power_mw"] != 210.5 {
		t.Errorf("expected peak 210.5, got %f", loaded.Metrics["peak_power_mw"])
	}
	if loaded.Timestamp.IsZero() {
		t.Error("timestamp should be filled in on save")
	}

	series, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 trace rows, got %d", len(series))
	}
	if series[1].FuelTemp != 460 || series[1].RodPos != 0.25 {
		t.Errorf("trace did not round-trip: %+v", series[1])
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
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save("startup", RunMetadata{Dt: 0.005}, sampleSeries()); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New("/nonexistent/path/for/sure")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Error("expected no runs")
	}
}
