package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gekaremi/vplanet/internal/config"
	"github.com/gekaremi/vplanet/internal/engine"
	"github.com/gekaremi/vplanet/internal/setup"
	"github.com/gekaremi/vplanet/internal/sim"
	"github.com/gekaremi/vplanet/internal/storage"
	"github.com/gekaremi/vplanet/internal/sweep"
	"github.com/gekaremi/vplanet/internal/tui"
	"github.com/gekaremi/vplanet/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	integrator string
	eta        float64
	stopAge    float64
	outputIntv float64
	noSave     bool
	// Plot selection
	plotBody   string
	plotColumn string
	plotWidth  int
	plotHeight int
	// Export destination
	exportPath string
	// Sweep grid
	sweepEtas   []float64
	sweepBody   string
	sweepColumn string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vplanet",
		Short: "planetary system evolution",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vplanet", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a system",
		RunE:  runSystem,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "override integrator (euler, rk4)")
	runCmd.Flags().Float64Var(&eta, "eta", 0, "override timestep safety fraction")
	runCmd.Flags().Float64Var(&stopAge, "stop-age", 0, "override stop age (years)")
	runCmd.Flags().Float64Var(&outputIntv, "output-interval", 0, "override output interval (years)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "integrate with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().StringVar(&integrator, "integrator", "", "override integrator (euler, rk4)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run column",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotBody, "body", "", "body name (default: first body)")
	plotCmd.Flags().StringVar(&plotColumn, "column", "luminosity", "column to plot")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 14, "chart height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output path (default: stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "rerun a system across a grid of eta values",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().Float64SliceVar(&sweepEtas, "etas", []float64{0.001, 0.01, 0.1}, "eta values to sweep")
	sweepCmd.Flags().StringVar(&sweepBody, "body", "", "body name (default: first body)")
	sweepCmd.Flags().StringVar(&sweepColumn, "column", "rotrate", "column to compare")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list bundled system presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [preset] [path]",
		Short: "write a preset configuration to a yaml file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			return config.Save(args[1], cfg)
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, sweepCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file, and flag overrides, flags last.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config

	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		return nil, fmt.Errorf("either --config or --preset is required")
	}

	if cmd.Flags().Changed("integrator") {
		cfg.System.Integrator = integrator
	}
	if cmd.Flags().Changed("eta") {
		cfg.System.Eta = eta
	}
	if cmd.Flags().Changed("stop-age") {
		cfg.System.StopAge = stopAge
	}
	if cmd.Flags().Changed("output-interval") {
		cfg.System.OutputInterval = outputIntv
	}

	return cfg, nil
}

func runSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	evolver, err := setup.Build(cfg)
	if err != nil {
		return err
	}
	rec := sim.NewRecorder(evolver.Bodies)
	evolver.Outputs = append(evolver.Outputs, rec)

	if err := evolver.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := evolver.Run(ctx); err != nil {
		return err
	}

	fmt.Print(viz.Summary(rec, evolver.Halted()))

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.System.Name, cfg.System.Integrator, cfg.System.Eta,
		cfg.System.StopAge, cfg.System.OutputInterval, evolver.Halted(), rec)
	if err != nil {
		return err
	}
	fmt.Printf("saved run %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	evolver, err := setup.Build(cfg)
	if err != nil {
		return err
	}
	rec := sim.NewRecorder(evolver.Bodies)
	evolver.Outputs = append(evolver.Outputs, rec)

	if err := evolver.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(evolver, rec))
	_, err = p.Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	body := 0
	if sweepBody != "" {
		body = -1
		for i, bc := range cfg.Bodies {
			if bc.Name == sweepBody {
				body = i
				break
			}
		}
		if body < 0 {
			return fmt.Errorf("no body %s in configuration", sweepBody)
		}
	}

	c := &sweep.Convergence{Config: cfg, Etas: sweepEtas, Body: body, Column: sweepColumn}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := c.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ETA\tSTEPS\tFINAL\tREL ERROR\tHALTED")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.6g\t%.3g\t%v\n", r.Eta, r.Steps, r.Final, r.Error, r.Halted)
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
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tINTEGRATOR\tRECORDS\tHALTED\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\t%s\n",
			r.ID, r.System, r.Integrator, r.Records, r.Halted,
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	body := plotBody
	if body == "" {
		if len(meta.Bodies) == 0 {
			return fmt.Errorf("run %s has no bodies", args[0])
		}
		body = meta.Bodies[0]
	}

	header, rows, err := st.LoadBody(args[0], body)
	if err != nil {
		return err
	}

	col := -1
	for j, name := range header {
		if name == plotColumn {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("unknown column %s (available: %v)", plotColumn, header)
	}

	vals := make([]float64, len(rows))
	for i, row := range rows {
		vals[i] = row[col]
	}

	caption := fmt.Sprintf("%s: %s vs time", body, plotColumn)
	out, err := viz.PlotSeries(vals, caption, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Print(out)

	n := len(rows)
	fmt.Printf("%d records, %.3g to %.3g yr\n", n,
		rows[0][0]/engine.YearSec, rows[n-1][0]/engine.YearSec)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if exportPath == "" {
		return st.ExportRun(args[0], os.Stdout)
	}
	f, err := os.Create(exportPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return st.ExportRun(args[0], f)
}
