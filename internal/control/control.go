package control

import (
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/physics"
)

// Params is the mutable control configuration. It is never part of the
// integrated state vector; the pre-step hook reads it each step and the
// Subsystem entry points are the only writers.
type Params struct {
	RodSetpoint float64 // [%]
	RodRate     float64 // commanded rate [%/s]
	MaxRodRate  float64 // PID output saturation [%/s]

	Kp, Ki, Kd      float64
	PIDBias         float64
	PowerSetpointMW float64

	CoolantFlow     float64 // actual flow [g/s]
	CoolantSetpoint float64 // [g/s]
	MinFlow         float64 // auto-map lower bound [g/s]
	MaxFlow         float64 // auto-map upper bound [g/s]
	MaxPowerMW      float64 // power normalization for the flow map

	FuelTempLimit float64 // scram threshold [K]
	CoolTempLimit float64 // scram threshold [K]

	PowerCtrl   bool
	CoolantCtrl bool
	Scram       bool
	Prompt      bool
}

// PIDWindow is how many trailing history samples feed the integral term.
const PIDWindow = 100

func DefaultParams() Params {
	return Params{
		MaxRodRate:      0.60,
		Kp:              0.01,
		Ki:              0.0001,
		Kd:              0.0001,
		CoolantFlow:     200.0e3,
		CoolantSetpoint: 200.0e3,
		MinFlow:         200.0e3,
		MaxFlow:         1200.0e3,
		MaxPowerMW:      600.0,
		FuelTempLimit:   1700.0,
		CoolTempLimit:   700.0,
	}
}

// Subsystem computes the control inputs consumed by the plant each step:
// rod rate, coolant flow, and the scram override.
type Subsystem struct {
	params Params
	phys   *physics.Params
	log    *zap.Logger
}

func New(phys *physics.Params, log *zap.Logger) *Subsystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subsystem{
		params: DefaultParams(),
		phys:   phys,
		log:    log,
	}
}

// Params returns a copy of the current control configuration.
func (c *Subsystem) Params() Params { return c.params }

func (c *Subsystem) ScramActive() bool    { return c.params.Scram }
func (c *Subsystem) PromptActive() bool   { return c.params.Prompt }
func (c *Subsystem) CoolantFlow() float64 { return c.params.CoolantFlow }

// SetGains replaces the power PID gains and resets the bias so a
// retune does not inherit stale integral history.
func (c *Subsystem) SetGains(kp, ki, kd float64) {
	c.params.Kp = kp
	c.params.Ki = ki
	c.params.Kd = kd
	c.params.PIDBias = 0
}

// SetRodSetpoint clamps to [0,100]; out-of-range input comes from
// continuous operator hardware and must never halt the loop.
func (c *Subsystem) SetRodSetpoint(pct float64) {
	c.params.RodSetpoint = clamp(pct, 0, 100)
}

// SetRodRate is a no-op while the power controller owns the rod.
func (c *Subsystem) SetRodRate(rate float64) {
	if c.params.PowerCtrl {
		return
	}
	c.params.RodRate = rate
}

// EnablePowerControl switches the rod over to the PID loop (or back).
// Enabling resets the PID bias and any in-flight manual rate.
func (c *Subsystem) EnablePowerControl(setpointMW float64, on bool) {
	c.params.PowerSetpointMW = math.Max(setpointMW, 0)
	c.params.PowerCtrl = on
	c.params.PIDBias = 0
	c.params.RodRate = 0
}

// EnableCoolantControl pins the flow setpoint [kg/s]; with control off the
// pre-step auto-map retargets the setpoint from power instead.
func (c *Subsystem) EnableCoolantControl(setpointKgS float64, on bool) {
	c.params.CoolantSetpoint = math.Max(setpointKgS, 0) * 1.0e3
	c.params.CoolantCtrl = on
}

// SetCoolantRate sets the flow setpoint [g/s]; only effective while
// coolant control is disabled.
func (c *Subsystem) SetCoolantRate(gps float64) {
	if c.params.CoolantCtrl {
		return
	}
	c.params.CoolantSetpoint = math.Max(gps, 0)
}

// SetScram forces or clears the scram latch.
func (c *Subsystem) SetScram(active bool) {
	c.params.Scram = active
}

// SetPromptMode toggles the high-worth demonstration mode. Enabling
// performs the one-shot "reverse scram": an abrupt +3% rod jump rather
// than a ramp. x is mutated in place.
func (c *Subsystem) SetPromptMode(on bool, x dynamo.State) {
	c.params.Prompt = on
	if on {
		x[dynamo.IdxRodPos] = clamp(x[dynamo.IdxRodPos]+3.0, 0, 100)
		c.params.RodRate = 0
		c.log.Warn("prompt jump mode activated",
			zap.Float64("rod_pos_pct", x[dynamo.IdxRodPos]))
	}
}

// PreStep runs the control algorithm ahead of one integration step and
// returns the plant control vector. It may mutate x: scram slams the rod
// to 0 instantly.
func (c *Subsystem) PreStep(x dynamo.State, hist *history.Buffer, dt float64) dynamo.Control {
	if c.params.PowerCtrl {
		c.params.RodRate = c.pidRodRate(x, hist, dt)
	} else {
		c.params.RodRate = c.relaxRod(x)
	}

	// Travel limits.
	if c.params.RodRate < 0 && x[dynamo.IdxRodPos] <= 0 {
		c.params.RodRate = 0
	} else if c.params.RodRate > 0 && x[dynamo.IdxRodPos] >= 100 {
		c.params.RodRate = 0
	}

	if !c.params.CoolantCtrl {
		c.autoFlowSetpoint(x)
	}
	c.relaxFlow(dt)

	c.scramCheck(x)
	if c.params.Scram {
		x[dynamo.IdxRodPos] = 0
		c.params.RodRate = 0
	}

	return dynamo.Control{c.params.RodRate, c.params.CoolantFlow}
}

// pidRodRate runs the power PID: proportional on the instantaneous power
// error, integral over the trailing history window, derivative as a
// finite difference of the two newest errors. Output saturates at
// MaxRodRate preserving sign.
func (c *Subsystem) pidRodRate(x dynamo.State, hist *history.Buffer, dt float64) float64 {
	current := c.phys.ThermalPowerMW(x[dynamo.IdxNeutrons])

	tail := hist.Tail(PIDWindow)
	integral := 0.0
	for _, pr := range tail {
		integral += c.params.PowerSetpointMW - c.phys.ThermalPowerMW(pr.Neutrons)
	}

	derivative := 0.0
	if len(tail) >= 2 && dt > 0 {
		eLast := c.params.PowerSetpointMW - c.phys.ThermalPowerMW(tail[len(tail)-1].Neutrons)
		ePrev := c.params.PowerSetpointMW - c.phys.ThermalPowerMW(tail[len(tail)-2].Neutrons)
		derivative = (eLast - ePrev) / dt
	}

	out := c.params.PIDBias +
		c.params.Kp*(c.params.PowerSetpointMW-current) +
		c.params.Ki*integral +
		c.params.Kd*derivative

	if math.Abs(out) > c.params.MaxRodRate {
		out = math.Copysign(c.params.MaxRodRate, out)
	}
	return out
}

// relaxRod drives the rod toward its setpoint with a tanh-saturated
// rate: full speed far away, easing to zero at the setpoint.
func (c *Subsystem) relaxRod(x dynamo.State) float64 {
	diff := x[dynamo.IdxRodPos] - c.params.RodSetpoint
	if diff == 0 {
		return 0
	}
	rate := 0.5 * math.Tanh(math.Abs(diff))
	if diff > 0 {
		return -rate
	}
	return rate
}

// autoFlowSetpoint maps the current power fraction onto the flow band.
func (c *Subsystem) autoFlowSetpoint(x dynamo.State) {
	norm := math.Abs(c.phys.ThermalPowerMW(x[dynamo.IdxNeutrons]) / c.params.MaxPowerMW)
	if norm > 1 {
		norm = 1
	}
	c.params.CoolantSetpoint = c.params.MinFlow + (c.params.MaxFlow-c.params.MinFlow)*norm
}

// relaxFlow moves the actual flow toward the active setpoint with the
// same tanh law as the rod, time-scaled by 1/dt.
func (c *Subsystem) relaxFlow(dt float64) {
	if dt <= 0 {
		return
	}
	diff := (c.params.CoolantSetpoint - c.params.CoolantFlow) / 10.0
	step := math.Tanh(math.Abs(diff)) / dt
	switch {
	case c.params.CoolantSetpoint > c.params.CoolantFlow:
		c.params.CoolantFlow += step
	case c.params.CoolantSetpoint < c.params.CoolantFlow:
		c.params.CoolantFlow -= step
	}
}

// scramCheck latches the scram on over-temperature. A safety event is a
// modeled control response, not an error: the run continues.
func (c *Subsystem) scramCheck(x dynamo.State) {
	if c.params.Scram {
		return
	}
	if x[dynamo.IdxFuelTemp] > c.params.FuelTempLimit {
		c.log.Error("fuel temperature scram setpoint exceeded",
			zap.Float64("fuel_temp_k", x[dynamo.IdxFuelTemp]),
			zap.Float64("limit_k", c.params.FuelTempLimit))
		c.params.Scram = true
	} else if x[dynamo.IdxCoolTemp] > c.params.CoolTempLimit {
		c.log.Error("coolant temperature scram setpoint exceeded",
			zap.Float64("coolant_temp_k", x[dynamo.IdxCoolTemp]),
			zap.Float64("limit_k", c.params.CoolTempLimit))
		c.params.Scram = true
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
