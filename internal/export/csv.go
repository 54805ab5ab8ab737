// Package export writes run artifacts: the operator-facing CSV trace,
// the full JSON run record, and SVG trend plots.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/engine"
)

// csvHeader matches the columns operators expect from strip-chart
// recorders: plant totals first, then the slow poisons.
var csvHeader = []string{
	"Time(s)",
	"Neutron_Density(#/cc)",
	"Power(MW)",
	"Reactivity($)",
	"Fuel_Temp(K)",
	"Coolant_Temp(K)",
	"Flow_Rate(kg/s)",
	"Rod_Position(%)",
	"Xe-135(atoms/cc)",
	"Sm-149(atoms/cc)",
}

// CSVLogger samples engine snapshots onto a CSV file at a fixed wall
// interval in simulation time. Snapshots arriving between sample points
// are dropped, not averaged.
type CSVLogger struct {
	f        *os.File
	w        *csv.Writer
	interval float64
	next     float64
	started  bool
}

func NewCSVLogger(path string, interval float64) (*CSVLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVLogger{f: f, w: w, interval: interval}, nil
}

// Log writes one row if the snapshot is at or past the next sample
// point. The first snapshot always logs.
func (l *CSVLogger) Log(snap engine.Snapshot) error {
	if l.started && snap.Time < l.next {
		return nil
	}
	l.started = true
	l.next = snap.Time + l.interval

	row := []string{
		fmtF(snap.Time),
		fmtF(snap.State[dynamo.IdxNeutrons]),
		fmtF(snap.ThermalPowerMW),
		fmtF(snap.Reactivity),
		fmtF(snap.State[dynamo.IdxFuelTemp]),
		fmtF(snap.State[dynamo.IdxCoolTemp]),
		fmtF(snap.CoolantFlow / 1.0e3),
		fmtF(snap.State[dynamo.IdxRodPos]),
		fmtF(snap.State[dynamo.IdxXenon]),
		fmtF(snap.State[dynamo.IdxSamarium]),
	}
	return l.w.Write(row)
}

func (l *CSVLogger) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
