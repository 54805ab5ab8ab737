package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/physics"
)

func zeroState() dynamo.State {
	return make(dynamo.State, dynamo.StateLen)
}

func TestPeakPower(t *testing.T) {
	p := physics.DefaultParams()
	m := NewPeakPower(p)

	x := zeroState()
	u := dynamo.Control{0, 0}

	x[dynamo.IdxNeutrons] = 1e3
	m.Observe(x, u, 0)
	first := m.Value()
	if first <= 0 {
		t.Fatal("peak should be positive at source level")
	}

	x[dynamo.IdxNeutrons] = 1e6
	m.Observe(x, u, 1)
	if m.Value() <= first {
		t.Error("peak should grow with neutron density")
	}

	// Peak is sticky: a later low sample must not lower it.
	high := m.Value()
	x[dynamo.IdxNeutrons] = 10
	m.Observe(x, u, 2)
	if m.Value() != high {
		t.Error("peak should be monotone")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear the peak")
	}
}

func TestRodEffort(t *testing.T) {
	m := NewRodEffort()
	if m.Value() != 0 {
		t.Error("no samples should read 0")
	}

	x := zeroState()
	m.Observe(x, dynamo.Control{0.6, 0}, 0)
	m.Observe(x, dynamo.Control{-0.6, 0}, 1)
	m.Observe(x, dynamo.Control{0, 0}, 2)

	want := (0.6 + 0.6 + 0) / 3
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("effort = %v, want %v", m.Value(), want)
	}
}

func TestTempMargin(t *testing.T) {
	m := NewTempMargin(1700, 700)

	x := zeroState()
	u := dynamo.Control{}

	x[dynamo.IdxFuelTemp] = 450
	x[dynamo.IdxCoolTemp] = 450
	m.Observe(x, u, 0)
	if m.Value() != 250 {
		t.Errorf("margin = %v, want coolant-limited 250", m.Value())
	}

	x[dynamo.IdxFuelTemp] = 1650
	x[dynamo.IdxCoolTemp] = 500
	m.Observe(x, u, 1)
	if m.Value() != 50 {
		t.Errorf("margin = %v, want fuel-limited 50", m.Value())
	}

	x[dynamo.IdxFuelTemp] = 1800
	m.Observe(x, u, 2)
	if m.Value() != -100 {
		t.Errorf("margin = %v, want -100 after a limit crossing", m.Value())
	}
}

func TestAsObserver(t *testing.T) {
	m := NewRodEffort()
	o := AsObserver(m)

	o.OnStep(zeroState(), dynamo.Control{0.3, 0}, 0)
	if m.Value() != 0.3 {
		t.Error("observer adapter should forward samples to the metric")
	}
}
