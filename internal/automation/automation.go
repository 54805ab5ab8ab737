package automation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/san-kum/reactorsim/internal/engine"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of timed operator actions applied to
// a single reactor run.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Duration    float64       `yaml:"duration"`
	Actions     []TimedAction `yaml:"actions"`
}

// TimedAction is one operator action fired at simulation time At [s].
type TimedAction struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`
	Value  float64 `yaml:"value"`
}

var actionNames = map[string]bool{
	"rod":         true,
	"rod-rate":    true,
	"power":       true,
	"power-off":   true,
	"coolant":     true,
	"coolant-off": true,
	"scram":       true,
	"reset-scram": true,
	"prompt":      true,
	"prompt-off":  true,
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Validate checks action names, timing, and duration.
func (s *Scenario) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("scenario %q: duration must be positive", s.Name)
	}
	for i, a := range s.Actions {
		name := strings.ToLower(a.Action)
		if !actionNames[name] {
			return fmt.Errorf("scenario %q: action %d: unknown action %q", s.Name, i+1, a.Action)
		}
		if a.At < 0 {
			return fmt.Errorf("scenario %q: action %d: negative time %g", s.Name, i+1, a.At)
		}
		if a.At > s.Duration {
			return fmt.Errorf("scenario %q: action %d: fires at %gs, after the %gs run ends", s.Name, i+1, a.At, s.Duration)
		}
	}
	return nil
}

func dispatch(eng *engine.Engine, a TimedAction) {
	switch strings.ToLower(a.Action) {
	case "rod":
		eng.SetRodSetpoint(a.Value)
	case "rod-rate":
		eng.SetRodRate(a.Value)
	case "power":
		eng.EnablePowerControl(a.Value, true)
	case "power-off":
		eng.EnablePowerControl(0, false)
	case "coolant":
		eng.EnableCoolantControl(a.Value, true)
	case "coolant-off":
		eng.EnableCoolantControl(0, false)
	case "scram":
		eng.Scram(true)
	case "reset-scram":
		eng.Scram(false)
	case "prompt":
		eng.SetPromptMode(true)
	case "prompt-off":
		eng.SetPromptMode(false)
	}
}

// RunScenario steps the engine through the full scripted run, firing
// each action once its time arrives. Actions are applied in time order
// regardless of file order. Each step's snapshot is passed to observe
// when non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, eng *engine.Engine, dt float64, observe func(engine.Snapshot)) error {
	if dt <= 0 {
		return fmt.Errorf("scenario %q: dt must be positive", scenario.Name)
	}

	pending := make([]TimedAction, len(scenario.Actions))
	copy(pending, scenario.Actions)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].At < pending[j].At })

	steps := int(scenario.Duration / dt)
	next := 0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := eng.Time()
		for next < len(pending) && pending[next].At <= now {
			dispatch(eng, pending[next])
			next++
		}

		if _, err := eng.Step(); err != nil {
			return fmt.Errorf("scenario %q: step %d: %w", scenario.Name, i+1, err)
		}

		if observe != nil {
			observe(eng.Snapshot())
		}
	}

	return nil
}
