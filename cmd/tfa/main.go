package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RyanBlaney/sonido-tfa/algorithms/ridge"
	"github.com/RyanBlaney/sonido-tfa/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tfa/algorithms/synth"
	"github.com/RyanBlaney/sonido-tfa/analysis"
	"github.com/RyanBlaney/sonido-tfa/analysis/config"
	"github.com/RyanBlaney/sonido-tfa/logging"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:                 "tfa",
		Usage:                "Wavelet time-frequency analysis of oscillatory signals",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "json-log",
				Usage: "Log as JSON",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				EnvVars: []string{"NO_COLOR"},
				Usage:   "Disable colored log output",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			analyzeCommand(),
			synthCommand(),
			fourierCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(cCtx *cli.Context) error {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	if cCtx.Bool("json-log") {
		logger.SetFormatter(&log.JSONFormatter{})
	}

	level, ok := logging.ParseLevel(cCtx.String("log-level"))
	if !ok {
		return fmt.Errorf("unknown log level %q", cCtx.String("log-level"))
	}

	adapter := logging.NewLogrusLogger(logger)
	adapter.SetLevel(level)
	logging.SetGlobalLogger(adapter)
	if cCtx.Bool("no-color") {
		logging.DisableColors()
	}
	return nil
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Delimited text file holding the signal",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "column",
			Usage: "Zero-based column of the signal",
		},
		&cli.StringFlag{
			Name:  "sep",
			Usage: "Column separator, whitespace when empty",
		},
		&cli.Float64Flag{
			Name:  "dt",
			Usage: "Sampling interval",
		},
	}
}

func analyzeCommand() *cli.Command {
	flags := append(inputFlags(),
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML analysis config, flags override it"},
		&cli.Float64Flag{Name: "tmin", Usage: "Smallest period"},
		&cli.Float64Flag{Name: "tmax", Usage: "Largest period"},
		&cli.IntFlag{Name: "steps", Usage: "Number of periods in the grid"},
		&cli.Float64Flag{Name: "cutoff", Usage: "Sinc detrending cutoff period, 0 disables"},
		&cli.StringFlag{Name: "norm", Usage: "Power normalization: variance or raw"},
		&cli.IntFlag{Name: "workers", Usage: "Spectrum workers, 0 picks from the CPU count"},
		&cli.StringFlag{Name: "method", Usage: "Ridge method: max or anneal"},
		&cli.Float64Flag{Name: "threshold", Usage: "Ridge power threshold"},
		&cli.IntFlag{Name: "smooth", Usage: "Ridge smoothing window, 0 disables"},
		&cli.Float64Flag{Name: "per-ini", Usage: "Initial annealing period"},
		&cli.Float64Flag{Name: "temp", Usage: "Initial annealing temperature"},
		&cli.IntFlag{Name: "nsteps", Usage: "Annealing iterations"},
		&cli.IntFlag{Name: "max-jump", Usage: "Largest period index jump between neighbours"},
		&cli.Float64Flag{Name: "curve-pen", Usage: "Annealing curvature penalty"},
		&cli.Uint64Flag{Name: "seed", Usage: "Annealing random seed"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Ridge TSV output, stdout when empty"},
		&cli.StringFlag{Name: "html", Usage: "Write an HTML report with the spectrum heatmap"},
	)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Compute the wavelet spectrum and trace its ridge",
		Flags:   flags,
		Action:  runAnalyze,
	}
}

func loadAnalysisConfig(cCtx *cli.Context) (*config.AnalysisConfig, error) {
	cfg := config.DefaultAnalysisConfig()
	if path := cCtx.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if cCtx.IsSet("dt") {
		cfg.Dt = cCtx.Float64("dt")
	}
	if cCtx.IsSet("tmin") {
		cfg.PeriodMin = cCtx.Float64("tmin")
	}
	if cCtx.IsSet("tmax") {
		cfg.PeriodMax = cCtx.Float64("tmax")
	}
	if cCtx.IsSet("steps") {
		cfg.StepNum = cCtx.Int("steps")
	}
	if cCtx.IsSet("cutoff") {
		cfg.CutoffPeriod = cCtx.Float64("cutoff")
	}
	if cCtx.IsSet("norm") {
		cfg.Normalization = cCtx.String("norm")
	}
	if cCtx.IsSet("workers") {
		cfg.Workers = cCtx.Int("workers")
	}
	if cCtx.IsSet("method") {
		cfg.Ridge.Method = cCtx.String("method")
	}
	if cCtx.IsSet("threshold") {
		cfg.Ridge.Threshold = cCtx.Float64("threshold")
	}
	if cCtx.IsSet("smooth") {
		cfg.Ridge.SmoothingWindow = cCtx.Int("smooth")
	}
	if cCtx.IsSet("per-ini") {
		cfg.Ridge.Anneal.InitialPeriod = cCtx.Float64("per-ini")
	}
	if cCtx.IsSet("temp") {
		cfg.Ridge.Anneal.InitialTemperature = cCtx.Float64("temp")
	}
	if cCtx.IsSet("nsteps") {
		cfg.Ridge.Anneal.Steps = cCtx.Int("nsteps")
	}
	if cCtx.IsSet("max-jump") {
		cfg.Ridge.Anneal.MaxJump = cCtx.Int("max-jump")
	}
	if cCtx.IsSet("curve-pen") {
		cfg.Ridge.Anneal.CurvaturePenalty = cCtx.Float64("curve-pen")
	}
	if cCtx.IsSet("seed") {
		cfg.Ridge.Anneal.Seed = cCtx.Uint64("seed")
	}

	return cfg, cfg.Validate()
}

func readInput(cCtx *cli.Context) ([]float64, error) {
	path := cCtx.String("input")
	values, dropped, err := readColumnFile(path, cCtx.Int("column"), cCtx.String("sep"))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if dropped > 0 {
		logging.Warn("dropped missing samples", logging.Fields{
			"input":   path,
			"dropped": dropped,
		})
	}
	return values, nil
}

func runAnalyze(cCtx *cli.Context) error {
	cfg, err := loadAnalysisConfig(cCtx)
	if err != nil {
		return err
	}
	signalValues, err := readInput(cCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithFields(ctx, logging.Fields{"input": cCtx.String("input")})

	analyzer := analysis.NewAnalyzer(cfg, nil)
	analyzer.SetProgress(progressLogger())

	res, err := analyzer.Analyze(ctx, signalValues)
	if err != nil {
		return err
	}

	if err := writeRidge(cCtx.String("output"), res.Ridge); err != nil {
		return err
	}

	logging.Info("ridge readout", logging.Fields{
		"points":           res.Readout.Points,
		"segments":         res.Readout.Segments,
		"period_median":    res.Readout.Periods.Quartiles.Q2,
		"period_iqr":       res.Readout.Periods.Quartiles.IQR,
		"period_cv":        res.Readout.Periods.CoefficientOfVariation(),
		"amplitude_median": res.Readout.Amplitude.Quartiles.Q2,
		"time_unit":        cfg.TimeUnit,
	})

	if path := cCtx.String("html"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := renderHTML(f, cCtx.String("input"), res); err != nil {
			return fmt.Errorf("rendering %s: %w", path, err)
		}
		logging.Info("wrote report", logging.Fields{"html": path})
	}
	return nil
}

// progressLogger logs every tenth of a stage
func progressLogger() analysis.ProgressFunc {
	last := map[string]int{}
	return func(stage string, done, total int) {
		decile := done * 10 / max(total, 1)
		if decile == last[stage] && done != total {
			return
		}
		last[stage] = decile
		logging.Debug("progress", logging.Fields{
			"stage": stage,
			"done":  done,
			"total": total,
		})
	}
}

func writeRidge(path string, rec *ridge.Record) error {
	if path == "" {
		return ridge.WriteDelimited(os.Stdout, rec, '\t', rec.Columns())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ridge.WriteDelimited(f, rec, '\t', rec.Columns()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func synthCommand() *cli.Command {
	defaults := synth.DefaultParams()
	return &cli.Command{
		Name:    "synth",
		Aliases: []string{"s"},
		Usage:   "Generate a noisy sine on a quadratic trend",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "samples", Value: defaults.Samples},
			&cli.Float64Flag{Name: "amp", Value: defaults.Amplitude},
			&cli.Float64Flag{Name: "period", Value: defaults.Period},
			&cli.Float64Flag{Name: "sigma", Value: defaults.NoiseSigma},
			&cli.Float64Flag{Name: "slope", Value: defaults.Slope},
			&cli.Uint64Flag{Name: "seed", Value: defaults.Seed},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, stdout when empty"},
		},
		Action: func(cCtx *cli.Context) error {
			sig, err := synth.Generate(synth.Params{
				Samples:    cCtx.Int("samples"),
				Amplitude:  cCtx.Float64("amp"),
				Period:     cCtx.Float64("period"),
				NoiseSigma: cCtx.Float64("sigma"),
				Slope:      cCtx.Float64("slope"),
				Seed:       cCtx.Uint64("seed"),
			})
			if err != nil {
				return err
			}

			out := os.Stdout
			if path := cCtx.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeColumn(out, "signal", sig.Values)
		},
	}
}

func fourierCommand() *cli.Command {
	return &cli.Command{
		Name:    "fourier",
		Aliases: []string{"f"},
		Usage:   "Print the variance-normalized Fourier power per period",
		Flags:   inputFlags(),
		Action: func(cCtx *cli.Context) error {
			values, err := readInput(cCtx)
			if err != nil {
				return err
			}
			dt := 1.0
			if cCtx.IsSet("dt") {
				dt = cCtx.Float64("dt")
			}

			res, err := spectral.FourierPower(values, dt)
			if err != nil {
				return err
			}

			var sb strings.Builder
			sb.WriteString("period\tpower\n")
			for i, p := range res.Periods {
				fmt.Fprintf(&sb, "%g\t%g\n", p, res.Power[i])
			}
			_, err = os.Stdout.WriteString(sb.String())
			return err
		},
	}
}
