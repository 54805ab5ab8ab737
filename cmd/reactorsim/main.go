package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/reactorsim/internal/analysis"
	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/export"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/optim"
	"github.com/san-kum/reactorsim/internal/storage"
	"github.com/san-kum/reactorsim/internal/tui"
)

var (
	dataDir  string
	dt       float64
	duration float64
	horizon  float64
	tol      float64

	rodSetpoint float64
	powerMW     float64
	coolantKgS  float64
	promptMode  bool
	noDepletion bool

	configFile string
	preset     string

	csvPath string
	jsonOut string
	svgPath string
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactorsim",
		Short: "point kinetics reactor simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the live operator console when no command given.
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".reactorsim", "run archive directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "outer timestep [s]")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration [s]")
	runCmd.Flags().Float64Var(&horizon, "horizon", config.DefaultHistoryHorizon, "history window [s]")
	runCmd.Flags().Float64Var(&tol, "tol", config.DefaultTolerance, "integration tolerance")
	runCmd.Flags().Float64Var(&rodSetpoint, "rod", 0, "rod withdrawal setpoint [%]")
	runCmd.Flags().Float64Var(&powerMW, "power", 0, "enable power control at this setpoint [MW]")
	runCmd.Flags().Float64Var(&coolantKgS, "coolant", 0, "pin coolant flow [kg/s]")
	runCmd.Flags().BoolVar(&promptMode, "prompt", false, "enable prompt jump mode")
	runCmd.Flags().BoolVar(&noDepletion, "no-depletion", false, "freeze isotope depletion")
	runCmd.Flags().StringVar(&configFile, "config", "", "run config file (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write strip-chart CSV here")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write full run record here")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write trend plot SVG here")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the structured log")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive operator console",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "outer timestep [s]")
	liveCmd.Flags().Float64Var(&rodSetpoint, "rod", 0, "initial rod setpoint [%]")
	liveCmd.Flags().BoolVar(&noDepletion, "no-depletion", false, "freeze isotope depletion")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run-id] [out.json]",
		Short: "export an archived run as JSON (\"-\" for stdout)",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "power spectrum of an archived neutron trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of operator actions",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "outer timestep [s]")
	scenarioCmd.Flags().StringVar(&csvPath, "csv", "", "write strip-chart CSV here")
	scenarioCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the structured log")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search the power PID gains",
		RunE:  tunePID,
	}
	tuneCmd.Flags().Float64Var(&powerMW, "power", 200, "tuning setpoint [MW]")
	tuneCmd.Flags().Float64Var(&duration, "time", 60, "per-candidate run length [s]")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDT\tDURATION\tCONTROL")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				ctl := "manual"
				if cfg.Control.PowerCtrl {
					ctl = fmt.Sprintf("power %.0f MW", cfg.Control.PowerMW)
				} else if cfg.Control.RodSetpoint > 0 {
					ctl = fmt.Sprintf("rod %.0f%%", cfg.Control.RodSetpoint)
				}
				fmt.Fprintf(w, "%s\t%.4fs\t%.0fs\t%s\n", name, cfg.Dt, cfg.Duration, ctl)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd,
		analyzeCmd, scenarioCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig folds preset, config file and flags into one run config.
// Precedence low to high: defaults, preset, config file, changed flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("horizon") {
		cfg.HistoryHorizon = horizon
	}
	if cmd.Flags().Changed("tol") {
		cfg.Tolerance = tol
	}
	if cmd.Flags().Changed("rod") {
		cfg.Control.RodSetpoint = rodSetpoint
	}
	if cmd.Flags().Changed("power") {
		cfg.Control.PowerCtrl = true
		cfg.Control.PowerMW = powerMW
	}
	if cmd.Flags().Changed("coolant") {
		cfg.Control.CoolantCtrl = true
		cfg.Control.CoolantKgS = coolantKgS
	}
	if cmd.Flags().Changed("prompt") {
		cfg.Control.Prompt = promptMode
	}
	if cmd.Flags().Changed("no-depletion") {
		cfg.Depletion = !noDepletion
	}
	if cmd.Flags().Changed("csv") {
		cfg.Output.CSVPath = csvPath
	}
	if cmd.Flags().Changed("json") {
		cfg.Output.JSONPath = jsonOut
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildEngine(cfg *config.Config, log *zap.Logger) (*engine.Engine, error) {
	eng, err := engine.New(engine.Config{
		Dt:             cfg.Dt,
		HistoryHorizon: cfg.HistoryHorizon,
		Tolerance:      cfg.Tolerance,
		Depletion:      cfg.Depletion,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Control.RodSetpoint > 0 {
		eng.SetRodSetpoint(cfg.Control.RodSetpoint)
	}
	if cfg.Control.PowerCtrl {
		eng.EnablePowerControl(cfg.Control.PowerMW, true)
	}
	if cfg.Control.CoolantCtrl {
		eng.EnableCoolantControl(cfg.Control.CoolantKgS, true)
	}
	if cfg.Control.Prompt {
		eng.SetPromptMode(true)
	}
	return eng, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if !quiet {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	peak := metrics.NewPeakPower(eng.Physics())
	effort := metrics.NewRodEffort()
	margin := metrics.NewTempMargin(1700, 700)
	eng.AddObserver(metrics.AsObserver(peak))
	eng.AddObserver(metrics.AsObserver(effort))
	eng.AddObserver(metrics.AsObserver(margin))

	var logger *export.CSVLogger
	if cfg.Output.CSVPath != "" {
		logger, err = export.NewCSVLogger(cfg.Output.CSVPath, cfg.Output.LogInterval)
		if err != nil {
			return err
		}
		defer logger.Close()
	}

	steps := int(cfg.Duration / cfg.Dt)
	fmt.Printf("running %d steps at dt=%.4fs...\n", steps, cfg.Dt)
	start := time.Now()

	for i := 0; i < steps; i++ {
		if _, err := eng.Step(); err != nil {
			return fmt.Errorf("simulation aborted at t=%.3fs: %w", eng.Time(), err)
		}
		if logger != nil {
			if err := logger.Log(eng.Snapshot()); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start)

	runMetrics := map[string]float64{
		peak.Name():   peak.Value(),
		effort.Name(): effort.Value(),
		margin.Name(): margin.Value(),
	}
	series := eng.HistoryWindow()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save("run", storage.RunMetadata{
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Depletion: cfg.Depletion,
		Scram:     eng.ScramStatus(),
		Metrics:   runMetrics,
	}, series)
	if err != nil {
		return err
	}

	if cfg.Output.JSONPath != "" {
		data := &export.RunData{
			Timestamp: time.Now(),
			Dt:        cfg.Dt,
			Duration:  cfg.Duration,
			Steps:     steps,
			Depletion: cfg.Depletion,
			Scram:     eng.ScramStatus(),
			Metrics:   runMetrics,
			Series:    series,
		}
		if err := export.ExportJSON(cfg.Output.JSONPath, data); err != nil {
			return err
		}
	}
	if svgPath != "" {
		if err := export.WriteTraceSVG(svgPath, series); err != nil {
			return err
		}
	}

	snap := eng.Snapshot()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final power: %.2f MW  reactivity: %.4f$  rod: %.1f%%\n",
		snap.ThermalPowerMW, snap.Reactivity, snap.State[dynamo.IdxRodPos])
	if eng.ScramStatus() {
		fmt.Println("SCRAM latched during run")
	}
	fmt.Println("\nmetrics:")
	for name, val := range runMetrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// The console owns the terminal; keep the engine log quiet.
	eng, err := buildEngine(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	return tui.Run(eng, cfg.Dt)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tDEPLETION\tSCRAM")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.4fs\t%t\t%t\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Depletion,
			run.Scram,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series))

	channels := []struct {
		caption string
		pick    func(history.Projection) float64
	}{
		{"neutron density [#/cc]", func(p history.Projection) float64 { return p.Neutrons }},
		{"fuel temperature [K]", func(p history.Projection) float64 { return p.FuelTemp }},
		{"rod position [%]", func(p history.Projection) float64 { return p.RodPos }},
		{"reactivity [$]", func(p history.Projection) float64 { return p.Reactivity }},
	}

	for _, ch := range channels {
		data := make([]float64, len(series))
		for i, p := range series {
			data[i] = ch.pick(p)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(ch.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID, outPath := args[0], args[1]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	data := &export.RunData{
		Timestamp: meta.Timestamp,
		Dt:        meta.Dt,
		Duration:  meta.Duration,
		Steps:     len(series),
		Depletion: meta.Depletion,
		Scram:     meta.Scram,
		Metrics:   meta.Metrics,
		Series:    series,
	}
	if outPath == "-" {
		return export.ExportJSONStdout(data)
	}
	if err := export.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, outPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	trace := make([]float64, len(series))
	for i, p := range series {
		trace[i] = p.Neutrons
	}

	spectrum := analysis.PowerSpectrum(trace)
	if spectrum == nil {
		return fmt.Errorf("trace too short to analyze (%d samples)", len(trace))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  dt: %.4fs\n\n", len(trace), meta.Dt)

	graph := asciigraph.Plot(spectrum,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("neutron density power spectrum"),
	)
	fmt.Println(graph)

	if hz, mag := analysis.DominantFrequency(trace, meta.Dt); mag > 0 {
		fmt.Printf("\ndominant oscillation: %.4f Hz (period %.2fs)\n", hz, 1/hz)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if !quiet {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	engCfg := engine.DefaultConfig()
	engCfg.Dt = dt
	engCfg.Logger = log
	eng, err := engine.New(engCfg)
	if err != nil {
		return err
	}

	var logger *export.CSVLogger
	if csvPath != "" {
		logger, err = export.NewCSVLogger(csvPath, config.DefaultLogInterval)
		if err != nil {
			return err
		}
		defer logger.Close()
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Printf("%d actions over %.1fs\n", len(scenario.Actions), scenario.Duration)

	err = automation.RunScenario(cmd.Context(), scenario, eng, dt, func(snap engine.Snapshot) {
		if logger != nil {
			logger.Log(snap)
		}
	})
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save("scenario", storage.RunMetadata{
		Scenario:  scenario.Name,
		Dt:        dt,
		Duration:  scenario.Duration,
		Depletion: engCfg.Depletion,
		Scram:     eng.ScramStatus(),
	}, eng.HistoryWindow())
	if err != nil {
		return err
	}

	snap := eng.Snapshot()
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final power: %.2f MW  rod: %.1f%%  scram: %t\n",
		snap.ThermalPowerMW, snap.State[dynamo.IdxRodPos], snap.Scram)
	return nil
}

func tunePID(cmd *cobra.Command, args []string) error {
	cfg := optim.TuneConfig{
		Engine:     engine.DefaultConfig(),
		SetpointMW: powerMW,
		Duration:   duration,
		KpRange:    []float64{0.005, 0.01, 0.02},
		KiRange:    []float64{0.00005, 0.0001, 0.0002},
		KdRange:    []float64{0, 0.0001},
	}

	gridSize := len(cfg.KpRange) * len(cfg.KiRange) * len(cfg.KdRange)
	fmt.Printf("tuning toward %.0f MW, %d candidates at %.0fs each...\n",
		powerMW, gridSize, duration)
	start := time.Now()

	kp, ki, kd, cost, err := optim.TunePID(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best gains: Kp=%g Ki=%g Kd=%g\n", kp, ki, kd)
	fmt.Printf("cost (time-weighted MW error): %.4f\n", cost)
	return nil
}
