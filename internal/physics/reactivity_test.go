package physics

import (
	"math"
	"testing"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

func TestReactivity_Pure(t *testing.T) {
	p := DefaultParams()
	x := DefaultState(p)
	x[dynamo.IdxRodPos] = 42.0
	x[dynamo.IdxXenon] = 3.0e15
	x[dynamo.IdxFuelTemp] = 900.0

	first := p.Reactivity(x, false)
	for i := 0; i < 5; i++ {
		if got := p.Reactivity(x, false); got != first {
			t.Fatalf("reactivity not pure: %v != %v", got, first)
		}
	}
	if math.IsNaN(first) || math.IsInf(first, 0) {
		t.Fatalf("reactivity not finite: %v", first)
	}
}

func TestReactivity_FreshFuelRodsIn(t *testing.T) {
	p := DefaultParams()
	x := DefaultState(p)

	// Rods in, no poisons, fuel at inlet temperature: only the excess
	// reactivity offset remains and the core is subcritical.
	got := p.Reactivity(x, false)
	if math.Abs(got-(-p.RhoExcess)) > 1e-12 {
		t.Errorf("reactivity = %v, want %v", got, -p.RhoExcess)
	}
}

func TestReactivity_PoisonsAlwaysNegative(t *testing.T) {
	p := DefaultParams()
	x := DefaultState(p)
	base := p.Reactivity(x, false)

	x[dynamo.IdxXenon] = 1.0e15
	withXe := p.Reactivity(x, false)
	if withXe >= base {
		t.Errorf("xenon should reduce reactivity: %v >= %v", withXe, base)
	}

	x[dynamo.IdxSamarium] = 1.0e15
	withSm := p.Reactivity(x, false)
	if withSm >= withXe {
		t.Errorf("samarium should reduce reactivity: %v >= %v", withSm, withXe)
	}
}

func TestReactivity_TemperatureFeedbackStabilizing(t *testing.T) {
	p := DefaultParams()
	x := DefaultState(p)
	base := p.Reactivity(x, false)

	x[dynamo.IdxFuelTemp] = p.InletTemp + 500
	hot := p.Reactivity(x, false)
	if hot >= base {
		t.Errorf("hotter fuel should reduce reactivity: %v >= %v", hot, base)
	}
}

func TestIntRodWorth_TotalWorth(t *testing.T) {
	p := DefaultParams()

	total := p.IntRodWorth(0, 100, false)
	if math.Abs(total-0.2) > 0.005 {
		t.Errorf("total rod worth = %v $, want ~0.2", total)
	}

	promptTotal := p.IntRodWorth(0, 100, true)
	ratio := promptTotal / total
	if math.Abs(ratio-15.0) > 1e-9 {
		t.Errorf("prompt/normal worth ratio = %v, want 15", ratio)
	}
}

func TestIntRodWorth_SineSymmetry(t *testing.T) {
	p := DefaultParams()

	lower := p.IntRodWorth(0, 50, false)
	upper := p.IntRodWorth(50, 100, false)
	if math.Abs(lower-upper) > 1e-12 {
		t.Errorf("worth curve not symmetric about mid-stroke: %v vs %v", lower, upper)
	}

	// Differential worth peaks at mid-stroke and vanishes at the ends.
	if p.DiffRodWorth(50, false) <= p.DiffRodWorth(10, false) {
		t.Error("differential worth should peak at mid-stroke")
	}
	if math.Abs(p.DiffRodWorth(0, false)) > 1e-15 {
		t.Error("differential worth should vanish at full insertion")
	}
}

func TestReactivity_BurnupDrift(t *testing.T) {
	p := DefaultParams()
	x := DefaultState(p)
	base := p.Reactivity(x, false)

	// U-235 depletion alone lowers reactivity.
	x[dynamo.IdxU235] = p.N235Init * 0.9
	depleted := p.Reactivity(x, false)
	if depleted >= base {
		t.Errorf("U-235 depletion should lower reactivity: %v >= %v", depleted, base)
	}

	// Pu-239 buildup adds some back.
	x[dynamo.IdxPu239] = 1.0e19
	withPu := p.Reactivity(x, false)
	if withPu <= depleted {
		t.Errorf("Pu-239 buildup should raise reactivity: %v <= %v", withPu, depleted)
	}
}
