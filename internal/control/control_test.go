package control

import (
	"math"
	"testing"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/physics"
)

func newTestSubsystem() (*Subsystem, dynamo.State, *history.Buffer) {
	p := physics.DefaultParams()
	c := New(p, nil)
	x := physics.DefaultState(p)
	hist := history.NewBuffer(200, history.Project(0, x, 0))
	return c, x, hist
}

func TestSetRodSetpoint_Clamps(t *testing.T) {
	c, _, _ := newTestSubsystem()

	c.SetRodSetpoint(150)
	if got := c.Params().RodSetpoint; got != 100 {
		t.Errorf("setpoint = %v, want clamp to 100", got)
	}
	c.SetRodSetpoint(-5)
	if got := c.Params().RodSetpoint; got != 0 {
		t.Errorf("setpoint = %v, want clamp to 0", got)
	}
}

func TestSetRodRate_IgnoredUnderPowerControl(t *testing.T) {
	c, _, _ := newTestSubsystem()

	c.EnablePowerControl(200, true)
	c.SetRodRate(0.3)
	if got := c.Params().RodRate; got != 0 {
		t.Errorf("rod rate = %v, manual rate must be a no-op under power control", got)
	}

	c.EnablePowerControl(200, false)
	c.SetRodRate(0.3)
	if got := c.Params().RodRate; got != 0.3 {
		t.Errorf("rod rate = %v, want 0.3", got)
	}
}

func TestRelaxRod_TowardSetpoint(t *testing.T) {
	c, x, hist := newTestSubsystem()
	c.SetRodSetpoint(50)

	u := c.PreStep(x, hist, 0.005)
	if u[dynamo.CtlRodRate] <= 0 {
		t.Errorf("rod rate = %v, want positive toward setpoint above position", u[dynamo.CtlRodRate])
	}
	if u[dynamo.CtlRodRate] > 0.5 {
		t.Errorf("rod rate = %v, tanh law caps at 0.5", u[dynamo.CtlRodRate])
	}

	x[dynamo.IdxRodPos] = 80
	u = c.PreStep(x, hist, 0.005)
	if u[dynamo.CtlRodRate] >= 0 {
		t.Errorf("rod rate = %v, want negative toward setpoint below position", u[dynamo.CtlRodRate])
	}

	x[dynamo.IdxRodPos] = 50
	u = c.PreStep(x, hist, 0.005)
	if u[dynamo.CtlRodRate] != 0 {
		t.Errorf("rod rate = %v, want 0 at setpoint", u[dynamo.CtlRodRate])
	}
}

func TestPreStep_TravelLimits(t *testing.T) {
	c, x, hist := newTestSubsystem()

	// Withdrawal command at the top stop.
	x[dynamo.IdxRodPos] = 100
	c.SetRodSetpoint(100)
	c.SetRodRate(0.5)
	u := c.PreStep(x, hist, 0.005)
	if u[dynamo.CtlRodRate] != 0 {
		t.Errorf("rod rate = %v at top stop, want 0", u[dynamo.CtlRodRate])
	}

	// Insertion command at the bottom stop.
	x[dynamo.IdxRodPos] = 0
	c.SetRodSetpoint(0)
	c.SetRodRate(-0.5)
	u = c.PreStep(x, hist, 0.005)
	if u[dynamo.CtlRodRate] != 0 {
		t.Errorf("rod rate = %v at bottom stop, want 0", u[dynamo.CtlRodRate])
	}
}

func TestPID_SaturatesAtMaxRate(t *testing.T) {
	c, x, hist := newTestSubsystem()
	c.EnablePowerControl(600, true) // enormous error from source level

	u := c.PreStep(x, hist, 0.005)
	max := c.Params().MaxRodRate
	if math.Abs(u[dynamo.CtlRodRate]) > max {
		t.Errorf("|rod rate| = %v exceeds max %v", math.Abs(u[dynamo.CtlRodRate]), max)
	}
	if u[dynamo.CtlRodRate] != max {
		t.Errorf("rod rate = %v, want saturation at +%v for large positive error", u[dynamo.CtlRodRate], max)
	}
}

func TestScramCheck_FuelOverTemp(t *testing.T) {
	c, x, hist := newTestSubsystem()
	x[dynamo.IdxFuelTemp] = 1800
	x[dynamo.IdxRodPos] = 60

	u := c.PreStep(x, hist, 0.005)
	if !c.ScramActive() {
		t.Fatal("scram should latch on fuel over-temperature")
	}
	if x[dynamo.IdxRodPos] != 0 {
		t.Errorf("rod position = %v, scram must slam rods to 0", x[dynamo.IdxRodPos])
	}
	if u[dynamo.CtlRodRate] != 0 {
		t.Errorf("rod rate = %v, want 0 under scram", u[dynamo.CtlRodRate])
	}
}

func TestScramCheck_CoolantOverTemp(t *testing.T) {
	c, x, hist := newTestSubsystem()
	x[dynamo.IdxCoolTemp] = 750

	c.PreStep(x, hist, 0.005)
	if !c.ScramActive() {
		t.Fatal("scram should latch on coolant over-temperature")
	}
}

func TestScram_OverridesSetpoint(t *testing.T) {
	c, x, hist := newTestSubsystem()
	c.SetRodSetpoint(80)
	x[dynamo.IdxRodPos] = 40
	c.SetScram(true)

	u := c.PreStep(x, hist, 0.005)
	if x[dynamo.IdxRodPos] != 0 || u[dynamo.CtlRodRate] != 0 {
		t.Errorf("scram must override setpoint: pos=%v rate=%v", x[dynamo.IdxRodPos], u[dynamo.CtlRodRate])
	}
}

func TestPromptMode_RodJump(t *testing.T) {
	c, x, _ := newTestSubsystem()
	x[dynamo.IdxRodPos] = 40

	c.SetPromptMode(true, x)
	if !c.PromptActive() {
		t.Fatal("prompt mode should be active")
	}
	if x[dynamo.IdxRodPos] != 43 {
		t.Errorf("rod position = %v, want +3 jump to 43", x[dynamo.IdxRodPos])
	}

	// Jump clamps at full withdrawal.
	x[dynamo.IdxRodPos] = 99
	c.SetPromptMode(true, x)
	if x[dynamo.IdxRodPos] != 100 {
		t.Errorf("rod position = %v, want clamp to 100", x[dynamo.IdxRodPos])
	}

	c.SetPromptMode(false, x)
	if c.PromptActive() {
		t.Error("prompt mode should clear")
	}
	if x[dynamo.IdxRodPos] != 100 {
		t.Error("disabling prompt mode must not move the rod")
	}
}

func TestAutoFlowMap(t *testing.T) {
	c, x, hist := newTestSubsystem()

	// Zero power: setpoint pins at the minimum flow bound.
	x[dynamo.IdxNeutrons] = 0
	c.PreStep(x, hist, 0.005)
	if got := c.Params().CoolantSetpoint; got != c.Params().MinFlow {
		t.Errorf("setpoint = %v at zero power, want MinFlow %v", got, c.Params().MinFlow)
	}

	// Beyond max power: clamps at the maximum bound.
	x[dynamo.IdxNeutrons] = 2.0e9 // >> 600 MW
	c.PreStep(x, hist, 0.005)
	if got := c.Params().CoolantSetpoint; got != c.Params().MaxFlow {
		t.Errorf("setpoint = %v above max power, want MaxFlow %v", got, c.Params().MaxFlow)
	}
}

func TestRelaxFlow_MovesTowardSetpoint(t *testing.T) {
	c, x, hist := newTestSubsystem()
	c.EnableCoolantControl(800, true) // 800 kg/s

	before := c.CoolantFlow()
	c.PreStep(x, hist, 0.005)
	after := c.CoolantFlow()
	if after <= before {
		t.Errorf("flow should relax upward: %v -> %v", before, after)
	}
	if after > c.Params().CoolantSetpoint+1.0/0.005 {
		t.Errorf("flow stepped too far: %v", after)
	}
}

func TestEnableCoolantControl_ClampsNegative(t *testing.T) {
	c, _, _ := newTestSubsystem()
	c.EnableCoolantControl(-50, true)
	if got := c.Params().CoolantSetpoint; got != 0 {
		t.Errorf("setpoint = %v, want negative input clamped to 0", got)
	}
}
