package engine

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/reactorsim/internal/control"
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/integrators"
	"github.com/san-kum/reactorsim/internal/physics"
)

// Config describes one engine instance.
type Config struct {
	Init           []float64 // optional initial state, length dynamo.StateLen
	Dt             float64   // fixed outer timestep [s]
	HistoryHorizon float64   // history window [s]
	Tolerance      float64   // per-step integration error tolerance
	Depletion      bool      // enable isotope depletion and burnup
	Physics        *physics.Params
	Logger         *zap.Logger

	// Integrator overrides the default adaptive RK45. A plain fixed-step
	// integrator is advanced at Dt with no subdivision, so the configured
	// Dt must already resolve the fastest mode.
	Integrator dynamo.Integrator
}

func DefaultConfig() Config {
	return Config{
		Dt:             0.005,
		HistoryHorizon: 100.0,
		Tolerance:      1e-6,
		Depletion:      true,
	}
}

// Snapshot is the atomic read-only view handed to external observers
// (plotting, CSV logging, hardware mirroring).
type Snapshot struct {
	Time           float64
	State          dynamo.State // copy
	Reactivity     float64      // [$]
	ThermalPowerMW float64
	CoolantFlow    float64 // [g/s]
	Scram          bool
	Prompt         bool
	Paused         bool
	PowerCtrl      bool
	CoolantCtrl    bool
}

// Engine owns the reactor state vector and orchestrates one fixed-size
// time advance: control pre-step, stiff-tolerant integration, reactivity
// recompute, history push. A single mutex serializes Step against
// Snapshot so concurrent readers never observe a half-updated state.
type Engine struct {
	mu sync.Mutex

	params *physics.Params
	plant  *physics.Plant
	ctl    *control.Subsystem
	integ  dynamo.Integrator
	hist   *history.Buffer

	x          dynamo.State
	t          float64
	dt         float64
	tol        float64
	reactivity float64
	paused     bool
	steps      int
	wasPrompt  bool // |rho| >= $1 on the previous step, for crossing logs

	observers []dynamo.Observer
	log       *zap.Logger
}

// New validates cfg and builds an engine at the configured or default
// initial condition, with the history buffer pre-filled.
func New(cfg Config) (*Engine, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("engine: dt %v: %w", cfg.Dt, dynamo.ErrBadTimestep)
	}
	if cfg.Init != nil && len(cfg.Init) != dynamo.StateLen {
		return nil, fmt.Errorf("engine: initial state length %d, want %d: %w",
			len(cfg.Init), dynamo.StateLen, dynamo.ErrBadStateLength)
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("engine: tolerance %v: %w", cfg.Tolerance, dynamo.ErrBadTolerance)
	}
	if cfg.HistoryHorizon <= 0 {
		cfg.HistoryHorizon = DefaultConfig().HistoryHorizon
	}

	params := cfg.Physics
	if params == nil {
		params = physics.DefaultParams()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	plant := physics.NewPlant(params)
	plant.Depletion = cfg.Depletion

	var x dynamo.State
	if cfg.Init != nil {
		x = dynamo.State(cfg.Init).Clone()
	} else {
		x = physics.DefaultState(params)
	}

	integ := cfg.Integrator
	if integ == nil {
		integ = integrators.NewRK45()
	}

	e := &Engine{
		params: params,
		plant:  plant,
		ctl:    control.New(params, log),
		integ:  integ,
		x:      x,
		dt:     cfg.Dt,
		tol:    cfg.Tolerance,
		log:    log,
	}
	e.reactivity = e.plant.Reactivity(e.x)

	capacity := int(cfg.HistoryHorizon / cfg.Dt)
	e.hist = history.NewBuffer(capacity, history.Project(0, e.x, e.reactivity))

	return e, nil
}

// AddObserver registers a per-step tap. Not safe to call concurrently
// with Step.
func (e *Engine) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

// Step advances the simulation by one fixed timestep and returns the new
// reactivity so callers can report prompt-critical events. While paused
// it is a no-op. Integrator non-convergence or a non-finite state is
// fatal for the run and leaves the last good state in place.
func (e *Engine) Step() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return e.reactivity, nil
	}

	u := e.ctl.PreStep(e.x, e.hist, e.dt)

	var xNew dynamo.State
	var err error
	if ai, ok := e.integ.(dynamo.AdaptiveIntegrator); ok {
		xNew, _, err = ai.StepAdaptive(e.plant, e.x, u, e.t, e.dt, e.tol)
	} else {
		xNew = e.integ.Step(e.plant, e.x, u, e.t, e.dt)
	}
	if err != nil {
		serr := &dynamo.SimulationError{Step: e.steps, Time: e.t, Wrapped: err}
		e.log.Error("integrator failed to converge", zap.Float64("t", e.t), zap.Error(err))
		return e.reactivity, serr
	}
	if !xNew.IsValid() {
		serr := &dynamo.SimulationError{Step: e.steps, Time: e.t, Wrapped: dynamo.ErrInvalidState}
		e.log.Error("integration produced non-finite state", zap.Float64("t", e.t))
		return e.reactivity, serr
	}

	e.x = xNew
	e.enforceInvariants()

	e.reactivity = e.plant.Reactivity(e.x)
	e.t += e.dt
	e.steps++
	e.hist.Push(history.Project(e.t, e.x, e.reactivity))

	if prompt := math.Abs(e.reactivity) >= 1.0; prompt != e.wasPrompt {
		if prompt {
			e.log.Warn("prompt critical/subcritical event",
				zap.Float64("dollars", e.reactivity), zap.Float64("t", e.t))
		}
		e.wasPrompt = prompt
	}

	for _, o := range e.observers {
		o.OnStep(e.x, u, e.t)
	}

	return e.reactivity, nil
}

// enforceInvariants applies the hard physical bounds after each step:
// populations and inventories never negative, rod within its stops.
func (e *Engine) enforceInvariants() {
	for i := dynamo.IdxNeutrons; i < dynamo.IdxPrecursor+dynamo.NumGroups; i++ {
		if e.x[i] < 0 {
			e.x[i] = 0
		}
	}
	for i := dynamo.IdxIodine; i <= dynamo.IdxBurnup; i++ {
		if e.x[i] < 0 {
			e.x[i] = 0
		}
	}
	if e.x[dynamo.IdxRodPos] < 0 {
		e.x[dynamo.IdxRodPos] = 0
	} else if e.x[dynamo.IdxRodPos] > 100 {
		e.x[dynamo.IdxRodPos] = 100
	}
}

// Snapshot returns an atomic copy of the current plant state and its
// derived quantities. Safe to call concurrently with Step.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := e.ctl.Params()
	return Snapshot{
		Time:           e.t,
		State:          e.x.Clone(),
		Reactivity:     e.reactivity,
		ThermalPowerMW: e.params.ThermalPowerMW(e.x[dynamo.IdxNeutrons]),
		CoolantFlow:    cp.CoolantFlow,
		Scram:          cp.Scram,
		Prompt:         cp.Prompt,
		Paused:         e.paused,
		PowerCtrl:      cp.PowerCtrl,
		CoolantCtrl:    cp.CoolantCtrl,
	}
}

// HistoryWindow returns the projection window, oldest to newest.
func (e *Engine) HistoryWindow() []history.Projection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Window()
}

// Physics exposes the plant parameter set for metrics and reporting.
func (e *Engine) Physics() *physics.Params { return e.params }

// Time returns the simulation clock [s].
func (e *Engine) Time() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t
}

func (e *Engine) Pause()  { e.mu.Lock(); e.paused = true; e.mu.Unlock() }
func (e *Engine) Resume() { e.mu.Lock(); e.paused = false; e.mu.Unlock() }

func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Control mutators. Each takes the engine lock so external control
// surfaces may race freely against the step cadence.

func (e *Engine) SetRodSetpoint(pct float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetRodSetpoint(pct)
}

func (e *Engine) SetRodRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetRodRate(rate)
}

func (e *Engine) EnablePowerControl(setpointMW float64, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.EnablePowerControl(setpointMW, on)
}

func (e *Engine) EnableCoolantControl(setpointKgS float64, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.EnableCoolantControl(setpointKgS, on)
}

// SetPIDGains replaces the power controller gains, for tuning runs.
func (e *Engine) SetPIDGains(kp, ki, kd float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetGains(kp, ki, kd)
}

func (e *Engine) SetCoolantRate(gps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetCoolantRate(gps)
}

// Scram forces (or clears) the emergency shutdown latch.
func (e *Engine) Scram(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetScram(active)
}

// SetPromptMode toggles the high-worth demonstration mode; enabling
// performs the one-shot rod jump immediately.
func (e *Engine) SetPromptMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetPromptMode(on, e.x)
	e.plant.Prompt = on
	e.reactivity = e.plant.Reactivity(e.x)
}

func (e *Engine) ScramStatus() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.ScramActive()
}

func (e *Engine) PromptModeStatus() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctl.PromptActive()
}

// Inject mutates the state vector in place under the engine lock. It
// exists for scenario setup and fault-injection tests, not for normal
// control paths.
func (e *Engine) Inject(mutate func(dynamo.State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(e.x)
	e.reactivity = e.plant.Reactivity(e.x)
}
