package export

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/san-kum/reactorsim/internal/history"
)

// RunData is the full machine-readable record of one run.
type RunData struct {
	Timestamp time.Time            `json:"timestamp"`
	Dt        float64              `json:"dt"`
	Duration  float64              `json:"duration"`
	Steps     int                  `json:"steps"`
	Depletion bool                 `json:"depletion"`
	Scram     bool                 `json:"scram"`
	Metrics   map[string]float64   `json:"metrics"`
	Series    []history.Projection `json:"series"`
}

// WriteJSON writes the indented run record to w.
func WriteJSON(w io.Writer, data *RunData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *RunData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

// ExportJSONStdout writes the run record to standard output, for
// piping into other tools.
func ExportJSONStdout(data *RunData) error {
	return WriteJSON(os.Stdout, data)
}
