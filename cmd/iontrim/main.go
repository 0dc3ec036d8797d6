package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/iontrim/internal/bench"
	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/export"
	"github.com/san-kum/iontrim/internal/metrics"
	"github.com/san-kum/iontrim/internal/storage"
	"github.com/san-kum/iontrim/internal/target"
	"github.com/san-kum/iontrim/internal/tui"
	"github.com/san-kum/iontrim/internal/viz"
)

var (
	dataDir string
	verbose bool
	log     = zap.NewNop()

	configFile string
	preset     string
	ions       int
	seed       int64
	strategy   string
	workers    int
	energy     float64
	angle      float64
	noSave     bool

	metricsAddr string
	metricsOut  string

	outFile  string
	svgW     int
	svgH     int
	plotH    int
	plotW    int
	benchN   []int
	benchIt  int
	benchAll bool
	noRecord bool
	histName string

	compoundsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "iontrim",
		Short:             "monte carlo ion range simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".iontrim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch of ions",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write metrics in textfile format")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a batch with a live progress view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run every strategy on the same configuration",
		RunE:  compareStrategies,
	}
	addSimFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&plotH, "height", 12, "plot height")
	showCmd.Flags().IntVar(&plotW, "width", 60, "plot width")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and depths as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export final ion states as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the depth histogram as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgW, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgH, "height", 400, "image height")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark strategies",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	benchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	benchCmd.Flags().IntSliceVar(&benchN, "ions", []int{100, 1000}, "ion counts")
	benchCmd.Flags().IntVar(&benchIt, "iterations", 5, "timed runs per count")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	benchCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	benchCmd.Flags().StringVar(&strategy, "strategy", "", "only this strategy")
	benchCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not append to the history")

	benchHistoryCmd := &cobra.Command{
		Use:   "bench-history",
		Short: "list and plot stored benchmark results",
		RunE:  benchHistory,
	}
	benchHistoryCmd.Flags().StringVar(&histName, "name", "", "only this configuration")
	benchHistoryCmd.Flags().BoolVar(&benchAll, "all", false, "list every measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	compoundsCmd := &cobra.Command{
		Use:   "compounds [name]",
		Short: "list compounds or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listCompounds,
	}
	compoundsCmd.Flags().StringVar(&compoundsFile, "file", "", "compound dictionary (json)")

	elementsCmd := &cobra.Command{
		Use:   "elements",
		Short: "list elements",
		RunE:  listElements,
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, listCmd, showCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, benchCmd, benchHistoryCmd,
		presetsCmd, compoundsCmd, elementsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(cmd *cobra.Command, args []string) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	log = l
	return nil
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&ions, "ions", "n", config.DefaultIons, "number of ions")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&strategy, "strategy", config.DefaultStrategy, "strategy ("+strings.Join(experiment.ListStrategies(), ", ")+")")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	cmd.Flags().Float64Var(&energy, "energy", 0, "ion energy in eV")
	cmd.Flags().Float64Var(&angle, "angle", 0, "incidence angle in degrees")
}

// loadConfig applies preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadInto(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("ions") {
		cfg.Simulation.Ions = ions
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("strategy") {
		cfg.Simulation.Strategy = strategy
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = workers
	}
	if flags.Changed("energy") {
		cfg.Ion.Energy = energy
	}
	if flags.Changed("angle") {
		cfg.Ion.Angle = angle
	}
	return cfg, cfg.Validate()
}

func newExperiment(cmd *cobra.Command) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func saveReport(rep *experiment.Report) error {
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(rep)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}

	collector := metrics.New()
	if metricsAddr != "" {
		server := collector.Listen(metricsAddr, log)
		defer server.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	built := exp.Built()
	fmt.Printf("%s: %d ions at %.0f eV, strategy %s\n",
		built.Name, built.Trim.Ions, built.Source.Energy, built.Strategy)

	rep, err := exp.Run(ctx, collector.Observer())
	if err != nil {
		return err
	}
	collector.Record(rep.Result)

	printReport(rep)

	if metricsOut != "" {
		if err := collector.WriteTextfile(metricsOut); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return saveReport(rep)
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	rep, err := tui.Run(context.Background(), exp)
	if err != nil {
		return err
	}
	return saveReport(rep)
}

func printReport(rep *experiment.Report) {
	res := rep.Result
	fmt.Println(viz.RenderSummary(rep.Name+" / "+rep.Strategy, res.Summary))
	fmt.Printf("elapsed %s, %.0f ions/s, %d collisions, %d displacements\n",
		res.Elapsed.Round(time.Millisecond), res.IonsPerSecond(), res.Collisions, res.Displacements)
	if res.Clamped > 0 {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("magic formula clamped %d times", res.Clamped)))
	}
	fmt.Println(viz.DepthPlot(rep.Histogram, 12, 60))
}

func compareStrategies(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	reports, err := exp.Compare(ctx, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tPARTS\tTIME\tIONS/S\tINSIDE\tMEAN\tSTD\tSKEW\tKURT")
	for _, rep := range reports {
		s := rep.Result.Summary
		fmt.Fprintf(w, "%s\t%d\t%s\t%.0f\t%d\t%.1f\t%.1f\t%.3f\t%.3f\n",
			rep.Strategy,
			rep.Partitions,
			rep.Result.Elapsed.Round(time.Millisecond),
			rep.Result.IonsPerSecond(),
			s.Inside,
			s.Depth.Mean.V,
			s.Depth.Std.V,
			s.Depth.Skewness.V,
			s.Depth.Kurtosis.V,
		)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTRATEGY\tIONS\tELAPSED\tMEAN DEPTH")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.3fs\t%.1f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Strategy,
			run.Ions,
			run.Elapsed,
			run.Summary.Depth.Mean.V,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderSummary(meta.ID, meta.Summary))
	fmt.Printf("strategy %s (%d partitions), seed %d, %.3fs, %.0f ions/s\n",
		meta.Strategy, meta.Partitions, meta.Seed, meta.Elapsed, meta.IonsPerSecond)
	fmt.Printf("%d collisions, %d displacements, %d clamped\n",
		meta.Collisions, meta.Displacements, meta.Clamped)
	if meta.Histogram != nil {
		fmt.Println(viz.DepthPlot(meta.Histogram, plotH, plotW))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	ions, err := st.LoadIons(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(outFile, meta, ions)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ions, err := st.LoadIons(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(outFile, ions)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Histogram == nil {
		return fmt.Errorf("run %s has no histogram", args[0])
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	svg := export.HistogramToSVG(meta.Histogram, svgW, svgH, meta.Name+" depth profile")
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := bench.DefaultOptions()
	opts.Counts = benchN
	opts.Iterations = benchIt
	opts.Workers = workers
	opts.Seed = seed
	if strategy != "" {
		opts.Strategies = []string{strategy}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("benchmarking %s\n\n", cfg.Name())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tIONS\tMEAN\tMIN\tMAX\tIONS/S")
	results, err := bench.NewRunner(cfg, log).Run(ctx, opts, func(r bench.Result) {
		fmt.Fprintf(w, "%s\t%d\t%.4fs\t%.4fs\t%.4fs\t%.0f\n",
			r.Strategy, r.Ions, r.Mean, r.Min, r.Max, r.IonsPerSecond)
	})
	w.Flush()
	if err != nil {
		return err
	}

	if noRecord {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	h, err := bench.OpenHistory(filepath.Join(dataDir, bench.HistoryFile))
	if err != nil {
		return err
	}
	defer h.Close()

	session, err := h.Append(ctx, results)
	if err != nil {
		return err
	}
	fmt.Printf("\nrecorded session %s in %s\n", session, h.Path())
	return nil
}

func benchHistory(cmd *cobra.Command, args []string) error {
	path := filepath.Join(dataDir, bench.HistoryFile)
	if _, err := os.Stat(path); err != nil {
		fmt.Println("no benchmark history")
		return nil
	}
	h, err := bench.OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()

	results, err := h.List(cmd.Context(), histName)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no benchmark history")
		return nil
	}

	if benchAll {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tNAME\tSTRATEGY\tIONS\tMEAN\tIONS/S")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%.0f\n",
				r.Timestamp.Format("2006-01-02 15:04:05"), r.Name, r.Strategy, r.Ions, r.Mean, r.IonsPerSecond)
		}
		w.Flush()
		fmt.Println()
	}

	counts, times := bench.Series(results)
	if len(counts) < 2 {
		fmt.Println("need at least two ion counts to plot")
		return nil
	}
	fmt.Println(viz.TimingPlot(counts, times, 12, 60))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tRUN\tENERGY\tANGLE")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.0f eV\t%.1f°\n", name, p.Name(), p.Ion.Energy, p.Ion.Angle)
	}
	return w.Flush()
}

func dictionary() (*target.Dictionary, error) {
	if compoundsFile != "" {
		return target.LoadDictionary(compoundsFile)
	}
	return target.DefaultDictionary(), nil
}

func listCompounds(cmd *cobra.Command, args []string) error {
	dict, err := dictionary()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		c, ok := dict.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown compound: %s", args[0])
		}
		fmt.Printf("%s (%s), %.4f g/cm³\n", c.Label(), c.Name, c.MassDensity())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Z\tSYMBOL\tFRACTION")
		for _, part := range c.Composition {
			sym := "?"
			if el, ok := target.ElementByZ(part.Z); ok {
				sym = el.Symbol
			}
			fmt.Fprintf(w, "%d\t%s\t%.4f\n", part.Z, sym, part.Fraction)
		}
		return w.Flush()
	}

	sections := dict.Sections()
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(viz.Title.Render(name))
		for _, c := range sections[name] {
			fmt.Printf("  %-32s %8.4f g/cm³\n", c.Label(), c.MassDensity())
		}
	}
	return nil
}

func listElements(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z\tSYMBOL\tNAME\tMASS\tDENSITY")
	for _, el := range target.Elements() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.4g\n", el.Z, el.Symbol, el.Name, el.Mass, el.Density)
	}
	return w.Flush()
}
