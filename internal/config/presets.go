package config

var Presets = map[string]*Config{
	"startup": {
		Dt: 0.005, Duration: 100.0, HistoryHorizon: 100.0, Tolerance: 1e-6,
		Depletion: true,
		Control:   ControlConfig{RodSetpoint: 50.0},
		Output:    OutputConfig{LogInterval: 0.5},
	},
	"power-control": {
		Dt: 0.005, Duration: 300.0, HistoryHorizon: 100.0, Tolerance: 1e-6,
		Depletion: true,
		Control:   ControlConfig{PowerCtrl: true, PowerMW: 200.0},
		Output:    OutputConfig{LogInterval: 0.5},
	},
	"prompt-jump": {
		Dt: 0.001, Duration: 30.0, HistoryHorizon: 30.0, Tolerance: 1e-7,
		Depletion: false,
		Control:   ControlConfig{RodSetpoint: 30.0, Prompt: true},
		Output:    OutputConfig{LogInterval: 0.1},
	},
	"depletion-soak": {
		Dt: 0.02, Duration: 3600.0, HistoryHorizon: 100.0, Tolerance: 1e-5,
		Depletion: true,
		Control:   ControlConfig{PowerCtrl: true, PowerMW: 300.0},
		Output:    OutputConfig{LogInterval: 5.0},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
