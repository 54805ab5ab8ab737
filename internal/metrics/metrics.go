// Package metrics holds run-level scalar accumulators fed from the
// engine's per-step observer tap.
package metrics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/physics"
)

// observerAdapter lets any Metric ride the engine's Observer hook.
type observerAdapter struct{ m dynamo.Metric }

func (a observerAdapter) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	a.m.Observe(x, u, t)
}

// AsObserver adapts a metric to the engine's per-step tap.
func AsObserver(m dynamo.Metric) dynamo.Observer { return observerAdapter{m} }

// PeakPower tracks the maximum thermal power reached during a run [MW].
type PeakPower struct {
	name string
	phys *physics.Params
	peak float64
}

func NewPeakPower(phys *physics.Params) *PeakPower {
	return &PeakPower{name: "peak_power_mw", phys: phys}
}

func (p *PeakPower) Name() string { return p.name }

func (p *PeakPower) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if mw := p.phys.ThermalPowerMW(x[dynamo.IdxNeutrons]); mw > p.peak {
		p.peak = mw
	}
}

func (p *PeakPower) Value() float64 { return p.peak }

func (p *PeakPower) Reset() { p.peak = 0 }

// RodEffort is the mean absolute rod rate commanded over a run [%/s].
// A well-tuned power controller keeps it small once settled.
type RodEffort struct {
	name    string
	sum     float64
	samples int
}

func NewRodEffort() *RodEffort {
	return &RodEffort{name: "rod_effort"}
}

func (r *RodEffort) Name() string { return r.name }

func (r *RodEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	r.sum += math.Abs(u[dynamo.CtlRodRate])
	r.samples++
}

func (r *RodEffort) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *RodEffort) Reset() {
	r.sum = 0
	r.samples = 0
}

// TempMargin tracks the worst-case margin to the scram thresholds over a
// run [K]. Negative means a limit was crossed at some point.
type TempMargin struct {
	name      string
	fuelLimit float64
	coolLimit float64
	min       float64
	samples   int
}

func NewTempMargin(fuelLimit, coolLimit float64) *TempMargin {
	return &TempMargin{
		name:      "temp_margin_k",
		fuelLimit: fuelLimit,
		coolLimit: coolLimit,
	}
}

func (m *TempMargin) Name() string { return m.name }

func (m *TempMargin) Observe(x dynamo.State, u dynamo.Control, t float64) {
	margin := math.Min(
		m.fuelLimit-x[dynamo.IdxFuelTemp],
		m.coolLimit-x[dynamo.IdxCoolTemp],
	)
	if m.samples == 0 || margin < m.min {
		m.min = margin
	}
	m.samples++
}

func (m *TempMargin) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *TempMargin) Reset() {
	m.min = 0
	m.samples = 0
}
