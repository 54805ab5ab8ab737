package optim

import (
	"context"
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/engine"
)

// TuneConfig describes one PID tuning campaign: each gain combination
// is scored on a fresh closed-loop run toward SetpointMW.
type TuneConfig struct {
	Engine     engine.Config
	SetpointMW float64
	Duration   float64 // [s]

	KpRange []float64
	KiRange []float64
	KdRange []float64
}

// TunePID grid-searches the power PID gains. The cost is the
// time-weighted mean absolute power error over the run, which penalizes
// both slow approach and residual oscillation. Runs that trip the scram
// are scored infinite.
func TunePID(ctx context.Context, cfg TuneConfig) (kp, ki, kd, cost float64, err error) {
	gs, err := NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{cfg.KpRange, cfg.KiRange, cfg.KdRange},
	)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	bestParams, best, err := gs.Search(ctx, func(ctx context.Context, p map[string]float64) (float64, error) {
		return scoreRun(cfg, p["kp"], p["ki"], p["kd"])
	})
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return bestParams["kp"], bestParams["ki"], bestParams["kd"], best, nil
}

func scoreRun(cfg TuneConfig, kp, ki, kd float64) (float64, error) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return 0, err
	}
	eng.SetPIDGains(kp, ki, kd)
	eng.EnablePowerControl(cfg.SetpointMW, true)

	dt := cfg.Engine.Dt
	if dt <= 0 {
		dt = engine.DefaultConfig().Dt
	}
	steps := int(cfg.Duration / dt)
	phys := eng.Physics()

	sum := 0.0
	for i := 0; i < steps; i++ {
		if _, err := eng.Step(); err != nil {
			return 0, err
		}
		snap := eng.Snapshot()
		if snap.Scram {
			return math.Inf(1), nil
		}
		e := math.Abs(cfg.SetpointMW - phys.ThermalPowerMW(snap.State[dynamo.IdxNeutrons]))
		sum += snap.Time * e
	}
	if steps == 0 {
		return math.Inf(1), nil
	}
	return sum / float64(steps), nil
}
