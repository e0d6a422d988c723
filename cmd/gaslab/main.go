package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gaslab/internal/analysis"
	"github.com/san-kum/gaslab/internal/config"
	"github.com/san-kum/gaslab/internal/gas"
	"github.com/san-kum/gaslab/internal/metrics"
	"github.com/san-kum/gaslab/internal/server"
	"github.com/san-kum/gaslab/internal/stats"
	"github.com/san-kum/gaslab/internal/storage"
	"github.com/san-kum/gaslab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	particles  int
	boxLength  float64
	radius     float64
	mass       float64
	dt         float64
	nu         float64
	equil      float64
	sampling   float64
	seed       int64
	configFile string
	preset     string
	saveRun    bool
	// serve options
	addr            string
	frameRate       int
	stepsPerFrame   int
	streamParticles bool
	// analyze options
	maxLag      int
	recordEvery int
	// ensemble size
	numRuns int
	// bench steps per configuration
	benchSteps int
)

// main registers commands and flags and executes the root command, which
// defaults to the live terminal view when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "gaslab",
		Short: "hard-sphere gas statistical mechanics lab",
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gaslab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation",
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().BoolVar(&saveRun, "save", false, "save results to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addParamFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a running simulation over websockets",
		RunE:  runServe,
	}
	addParamFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 30, "broadcast frame rate")
	serveCmd.Flags().IntVar(&stepsPerFrame, "steps", 3, "simulation steps per frame")
	serveCmd.Flags().BoolVar(&streamParticles, "stream-particles", false, "include particle positions in frames")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "velocity autocorrelation and diffusion analysis",
		RunE:  analyzeRun,
	}
	addParamFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&maxLag, "lag", 200, "autocorrelation window in recorded frames")
	analyzeCmd.Flags().IntVar(&recordEvery, "every", 5, "record a velocity frame every n steps")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run an ensemble of independent simulations",
		RunE:  runEnsemble,
	}
	addParamFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "ensemble size")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput across particle counts",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 500, "steps per configuration")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARTICLES\tBOX\tRADIUS\tNU\tDT\tSAMPLING")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.1f\t%.3f\t%.0fs\n",
					name, c.Particles, c.BoxLength, c.Radius, c.Nu, c.Dt, c.SamplingTime)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot saved run histograms",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, analyzeCmd, ensembleCmd, benchCmd, presetsCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&particles, "particles", 200, "particle count")
	f.Float64Var(&boxLength, "box", 10.0, "box side length")
	f.Float64Var(&radius, "radius", 0.1, "particle radius")
	f.Float64Var(&mass, "mass", 1.0, "particle mass")
	f.Float64Var(&dt, "dt", 0.01, "timestep")
	f.Float64Var(&nu, "nu", 0.5, "thermostat collision frequency (0 disables)")
	f.Float64Var(&equil, "equil", 10.0, "equilibration time")
	f.Float64Var(&sampling, "sampling", 30.0, "sampling time")
	f.Int64Var(&seed, "seed", 0, "random seed (0 = wall clock)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveParams layers defaults, preset, config file, and explicitly set
// CLI flags, in that order of increasing precedence.
func resolveParams(cmd *cobra.Command) (gas.Params, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return gas.Params{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return gas.Params{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	params := cfg.Params()
	flags := cmd.Flags()
	if flags.Changed("particles") {
		params.N = particles
	}
	if flags.Changed("box") {
		params.L = boxLength
	}
	if flags.Changed("radius") {
		params.R = radius
	}
	if flags.Changed("mass") {
		params.M = mass
	}
	if flags.Changed("dt") {
		params.Dt = dt
	}
	if flags.Changed("nu") {
		params.Nu = nu
	}
	if flags.Changed("equil") {
		params.EquilibrationTime = equil
	}
	if flags.Changed("sampling") {
		params.SamplingTime = sampling
	}
	if flags.Changed("seed") {
		params.Seed = seed
	}
	return params, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	params, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	engine, err := gas.New(params)
	if err != nil {
		return err
	}

	kT := params.K * engine.TargetTemperature()
	runner := gas.NewRunner(engine)
	runner.AddMetric(metrics.NewTemperatureDrift())
	runner.AddMetric(metrics.NewEnergyDrift())
	runner.AddMetric(metrics.NewCollisionRate())
	runner.AddMetric(metrics.NewMeanSpeedError(stats.MeanSpeed(params.M, kT)))
	runner.AddMetric(metrics.NewPressureGap())

	fmt.Printf("running %d particles, box %.1f, packing %.4f...\n",
		params.N, params.L, params.PackingFraction())
	start := time.Now()

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("pair collisions: %d\n", result.Final.Collisions)
	fmt.Printf("samples: %d\n", result.Final.Samples)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	fmt.Println()

	plotBins(result.Chart.Speed, "speed distribution (green measured, red theory)")
	plotHistory(result.Chart.History)

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(params, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	params, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	engine, err := gas.New(params)
	if err != nil {
		return err
	}

	m := viz.NewModel(engine)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	params, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Addr:             addr,
		FrameRate:        frameRate,
		StepsPerFrame:    stepsPerFrame,
		IncludeParticles: streamParticles,
	}
	srv, err := server.New(params, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("serving on %s (stream /ws, snapshot /stats)\n", addr)
	return srv.Run(ctx)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	params, err := resolveParams(cmd)
	if err != nil {
		return err
	}
	if recordEvery < 1 {
		recordEvery = 1
	}

	engine, err := gas.New(params)
	if err != nil {
		return err
	}

	fmt.Printf("running %d particles, recording velocities every %d steps...\n",
		params.N, recordEvery)

	var frames [][]gas.Vec3
	steps := 0
	for engine.Phase() != gas.PhaseFinished {
		engine.Step()
		engine.CollectSamples()
		steps++
		if engine.Phase() == gas.PhaseCollecting && steps%recordEvery == 0 {
			frames = append(frames, analysis.Velocities(engine.Particles()))
		}
	}

	c := analysis.Autocorrelation(frames, maxLag)
	if len(c) < 2 {
		return fmt.Errorf("not enough frames for analysis: %d", len(frames))
	}
	frameDt := float64(recordEvery) * params.Dt

	graph := asciigraph.Plot(analysis.Normalize(c),
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("velocity autocorrelation (normalized)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if spectrum := analysis.Spectrum(c); len(spectrum) > 1 {
		graph = asciigraph.Plot(spectrum,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("vacf power spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Printf("frames: %d  lag window: %.2f time units\n", len(frames), float64(len(c)-1)*frameDt)
	fmt.Printf("c(0): %.4f (3kT/m = %.4f)\n", c[0], 3*params.K*engine.TargetTemperature()/params.M)
	fmt.Printf("diffusion coefficient: %.6f\n", analysis.DiffusionCoefficient(c, frameDt))

	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	params, err := resolveParams(cmd)
	if err != nil {
		return err
	}

	seedStart := params.Seed
	if seedStart == 0 {
		seedStart = time.Now().UnixNano()
	}

	fmt.Printf("running %d members with seeds %d..%d...\n", numRuns, seedStart, seedStart+int64(numRuns)-1)
	start := time.Now()

	sums, err := gas.NewEnsemble(params, numRuns, seedStart).Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTEMP\tPRESSURE\tMEAN SPEED\tENERGY\tCOLLISIONS")
	for _, s := range sums {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.2f\t%d\n",
			s.Seed, s.Final.Temperature, s.Final.Pressure, s.Final.MeanSpeed, s.Final.TotalEnergy, s.Final.Collisions)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	agg := gas.Summarize(sums)
	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\naggregates:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tMEAN\tSTDDEV")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", name, agg[name].Mean, agg[name].StdDev)
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	counts := []int{50, 100, 200, 400, 800}

	fmt.Printf("benchmarking %d steps per particle count\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tPACKING\tSTEPS\tTIME\tSTEPS/SEC\tCOLLISIONS")

	for _, n := range counts {
		p := gas.DefaultParams()
		p.N = n
		p.Seed = 42

		engine, err := gas.New(p)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			engine.Step()
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%.4f\t%d\t%v\t%.0f\t%d\n",
			n, p.PackingFraction(), benchSteps, elapsed.Round(time.Millisecond),
			float64(benchSteps)/elapsed.Seconds(), engine.Stats().Collisions)
	}

	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tBOX\tNU\tSAMPLES\tCOLLISIONS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.1f\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.N,
			run.Params.L,
			run.Params.Nu,
			run.Final.Samples,
			run.Final.Collisions,
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
	speed, energy, err := st.LoadHistograms(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d  box: %.1f  nu: %.1f  samples: %d\n\n",
		meta.Params.N, meta.Params.L, meta.Params.Nu, meta.Final.Samples)

	plotBins(speed, "speed distribution (green measured, red theory)")
	plotBins(energy, "energy distribution (green measured, red theory)")
	plotHistory(history)

	return nil
}

func plotHistory(history []stats.Record) {
	if len(history) < 2 {
		return
	}
	errs := make([]float64, len(history))
	for i, rec := range history {
		errs[i] = rec.TempErrorPct
	}
	graph := asciigraph.Plot(errs,
		asciigraph.Height(8),
		asciigraph.Width(70),
		asciigraph.Caption("temperature error %"),
	)
	fmt.Println(graph)
}

func plotBins(bins []stats.Bin, caption string) {
	if len(bins) == 0 {
		return
	}
	theory := make([]float64, len(bins))
	measured := make([]float64, len(bins))
	for i, b := range bins {
		theory[i] = b.Theory
		measured[i] = b.Probability
	}
	graph := asciigraph.PlotMany([][]float64{theory, measured},
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	speed, energy, err := st.LoadHistograms(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	result := &gas.Result{
		Final:   meta.Final,
		Metrics: meta.Metrics,
		Steps:   meta.Steps,
		Chart: gas.ChartData{
			Speed:   speed,
			Energy:  energy,
			History: history,
			Samples: meta.Final.Samples,
		},
	}
	result.Chart.LogEnergy = stats.LogSeries(result.Chart.Energy)

	return storage.ExportJSON(os.Stdout, meta.Params, result)
}
