package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt             = 0.005
	DefaultDuration       = 100.0
	DefaultHistoryHorizon = 100.0
	DefaultTolerance      = 1e-6
	DefaultLogInterval    = 0.5
)

// Config is one reactor run: timing, control posture and output sinks.
type Config struct {
	Dt             float64 `yaml:"dt"`
	Duration       float64 `yaml:"duration"`
	HistoryHorizon float64 `yaml:"history_horizon"`
	Tolerance      float64 `yaml:"tolerance"`
	Depletion      bool    `yaml:"depletion"`

	Control ControlConfig `yaml:"control"`
	Output  OutputConfig  `yaml:"output"`
}

// ControlConfig is the initial control posture. Zero values mean "leave
// the subsystem at its defaults": rods in, automatic flow mapping.
type ControlConfig struct {
	RodSetpoint float64 `yaml:"rod_setpoint"` // [%]
	PowerCtrl   bool    `yaml:"power_control"`
	PowerMW     float64 `yaml:"power_mw"`
	CoolantCtrl bool    `yaml:"coolant_control"`
	CoolantKgS  float64 `yaml:"coolant_kg_s"`
	Prompt      bool    `yaml:"prompt_mode"`
}

// OutputConfig names the run artifacts. Empty paths disable a sink.
type OutputConfig struct {
	CSVPath     string  `yaml:"csv_path"`
	JSONPath    string  `yaml:"json_path"`
	LogInterval float64 `yaml:"log_interval"` // [s] between CSV rows
}

func DefaultConfig() *Config {
	return &Config{
		Dt:             DefaultDt,
		Duration:       DefaultDuration,
		HistoryHorizon: DefaultHistoryHorizon,
		Tolerance:      DefaultTolerance,
		Depletion:      true,
		Output: OutputConfig{
			LogInterval: DefaultLogInterval,
		},
	}
}

// Validate fails fast on a run that could never be stepped. Control
// setpoints are deliberately not checked here: the control subsystem
// clamps those at the point of use.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %v", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %v", c.Duration)
	}
	if c.HistoryHorizon <= 0 {
		return fmt.Errorf("config: history_horizon must be positive, got %v", c.HistoryHorizon)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("config: tolerance must be positive, got %v", c.Tolerance)
	}
	if c.Output.LogInterval < 0 {
		return fmt.Errorf("config: log_interval must not be negative, got %v", c.Output.LogInterval)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
