// Package analysis runs the complete wavelet pipeline on one signal:
// optional sinc detrending, the Morlet spectrum over a linear period grid,
// ridge tracing and ridge assembly.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/algorithms/filters"
	"github.com/RyanBlaney/sonido-tfa/algorithms/ridge"
	"github.com/RyanBlaney/sonido-tfa/algorithms/wavelet"
	"github.com/RyanBlaney/sonido-tfa/analysis/config"
	"github.com/RyanBlaney/sonido-tfa/logging"
	"gonum.org/v1/gonum/stat"
)

// Stage names passed to ProgressFunc
const (
	StageSpectrum = "spectrum"
	StageAnneal   = "anneal"
)

// ProgressFunc receives incremental progress of the long-running stages
type ProgressFunc func(stage string, done, total int)

// Result holds everything one analysis run produced. Nothing in it is
// shared with the analyzer or with other runs.
type Result struct {
	Time     []float64 `json:"time"`
	Raw      []float64 `json:"raw"`
	Trend    []float64 `json:"trend,omitempty"` // nil when detrending is off
	Analyzed []float64 `json:"analyzed"`        // Raw or Raw - Trend

	Spectrum *wavelet.Spectrum `json:"spectrum"`
	COI      []float64         `json:"coi"`

	Method string              `json:"method"`
	Path   ridge.Path          `json:"path"`
	Anneal *ridge.AnnealResult `json:"anneal,omitempty"`
	Ridge  *ridge.Record       `json:"ridge"`

	Readout *ridge.Readout `json:"readout"`

	Duration time.Duration `json:"duration"`
}

// Analyzer runs configured analyses. It holds no per-signal state and can be
// used for many signals, also concurrently.
type Analyzer struct {
	config   *config.AnalysisConfig
	logger   logging.Logger
	progress ProgressFunc
}

// NewAnalyzer creates an analyzer. A nil config uses the defaults and a nil
// logger the global logger.
func NewAnalyzer(cfg *config.AnalysisConfig, logger logging.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Analyzer{
		config: cfg,
		logger: logger.WithFields(logging.Fields{
			"component": "wavelet_analyzer",
		}),
	}
}

// SetProgress installs a progress callback for the spectrum and annealing stages
func (a *Analyzer) SetProgress(progress ProgressFunc) {
	a.progress = progress
}

// Config returns the analyzer's configuration
func (a *Analyzer) Config() *config.AnalysisConfig {
	return a.config
}

// Periods builds and validates the period grid for a signal of n samples
func (a *Analyzer) Periods(n int) ([]float64, error) {
	cfg := a.config
	periods, err := wavelet.NewPeriodGrid(cfg.PeriodMin, cfg.PeriodMax, cfg.StepNum)
	if err != nil {
		return nil, err
	}
	if err := wavelet.CheckPeriodBounds(periods, cfg.Dt, n); err != nil {
		return nil, err
	}
	return periods, nil
}

func (a *Analyzer) lowpass() *filters.SincLowpass {
	return filters.NewSincLowpassWithParams(filters.SincLowpassParams{
		CutoffPeriod: a.config.CutoffPeriod,
		Dt:           a.config.Dt,
		Order:        a.config.SincOrder,
	})
}

// Trend returns the sinc low-pass trend of signal for the configured cutoff
func (a *Analyzer) Trend(signal []float64) ([]float64, error) {
	return a.lowpass().Trend(signal)
}

// checkVariance rejects signals whose variance is floating point residue
// compared to the raw signal's scale
func checkVariance(signal []float64, meanSquare float64, what string) error {
	variance := common.PopVariance(signal)
	if common.NegligibleVariance(variance, meanSquare) {
		return fmt.Errorf("%w: %s signal is constant (variance %g)", common.ErrNumericDegeneracy, what, variance)
	}
	return nil
}

// Analyze runs the full pipeline on signal. Parameter problems are reported
// before any heavy computation starts. On cancellation the context error is
// returned and no partial result.
func (a *Analyzer) Analyze(ctx context.Context, signal []float64) (*Result, error) {
	start := time.Now()
	cfg := a.config

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := common.CheckSignal(signal); err != nil {
		return nil, err
	}
	periods, err := a.Periods(len(signal))
	if err != nil {
		return nil, err
	}
	normalization, err := wavelet.ParseNormalization(cfg.Normalization)
	if err != nil {
		return nil, err
	}

	rawScale := common.MeanSquare(signal)
	if normalization == wavelet.VarianceNormalized {
		if err := checkVariance(signal, rawScale, "raw"); err != nil {
			return nil, err
		}
	}

	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"samples": len(signal),
		"method":  cfg.Ridge.Method,
	})

	if cfg.StepNum > config.LargeGridSteps {
		logger.Warn("large period grid, spectrum computation will be slow", logging.Fields{
			"step_num": cfg.StepNum,
		})
	}

	result := &Result{
		Time:     common.TimeVector(len(signal), cfg.Dt),
		Raw:      append([]float64(nil), signal...),
		Analyzed: append([]float64(nil), signal...),
		Method:   cfg.Ridge.Method,
	}

	if cfg.CutoffPeriod > 0 {
		lowpass := a.lowpass()
		trend, err := lowpass.Trend(signal)
		if err != nil {
			return nil, err
		}
		result.Trend = trend
		for i := range result.Analyzed {
			result.Analyzed[i] -= trend[i]
		}
		logger.Debug("detrended signal", logging.Fields{
			"cutoff_period": lowpass.CutoffPeriod(),
			"trend_mean":    stat.Mean(trend, nil),
		})

		if normalization == wavelet.VarianceNormalized {
			if err := checkVariance(result.Analyzed, rawScale, "detrended"); err != nil {
				return nil, err
			}
		}
	}

	transform := wavelet.NewTransformWithParams(wavelet.TransformParams{
		Normalization: normalization,
		Workers:       cfg.Workers,
		Progress:      a.stageProgress(StageSpectrum),
	})
	transform.SetLogger(logger)

	spectrum, err := transform.Compute(ctx, result.Analyzed, cfg.Dt, periods)
	if err != nil {
		return nil, err
	}
	result.Spectrum = spectrum
	result.COI = spectrum.ConeOfInfluence()

	switch cfg.Ridge.Method {
	case config.MethodMax:
		result.Path, err = ridge.MaxRidge(spectrum.Modulus)
		if err != nil {
			return nil, err
		}

	case config.MethodAnneal:
		params := a.annealParams(periods)
		annealer := ridge.NewAnnealer(params)
		annealer.SetLogger(logger)

		anneal, err := annealer.Run(ctx, spectrum.Modulus)
		if err != nil {
			return nil, err
		}
		result.Anneal = anneal
		result.Path = anneal.Path

	default:
		return nil, fmt.Errorf("%w: unknown ridge method %q", common.ErrInvalidParameter, cfg.Ridge.Method)
	}

	result.Ridge, err = ridge.Assemble(spectrum, result.Path, result.Time, ridge.AssembleParams{
		Threshold:       cfg.Ridge.Threshold,
		SmoothingWindow: cfg.Ridge.SmoothingWindow,
	})
	if err != nil {
		return nil, err
	}

	result.Readout, err = result.Ridge.Readout()
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	logger.Info("wavelet analysis finished", logging.Fields{
		"periods":       len(periods),
		"ridge_len":     result.Ridge.Len(),
		"median_period": result.Readout.Periods.Quartiles.Q2,
		"duration_ms":   result.Duration.Milliseconds(),
	})

	return result, nil
}

// annealParams maps the annealing config onto the period grid. A zero
// initial period starts in the middle of the period range.
func (a *Analyzer) annealParams(periods []float64) ridge.AnnealParams {
	ac := a.config.Ridge.Anneal

	guess := ac.InitialPeriod
	if guess <= 0 {
		guess = stat.Mean(periods, nil)
	}

	return ridge.AnnealParams{
		InitialIndex:       ridge.IndexForPeriod(periods, guess),
		InitialTemperature: ac.InitialTemperature,
		Steps:              ac.Steps,
		MaxJump:            ac.MaxJump,
		CurvaturePenalty:   ac.CurvaturePenalty,
		Seed:               ac.Seed,
		Progress:           a.stageProgress(StageAnneal),
	}
}

func (a *Analyzer) stageProgress(stage string) func(done, total int) {
	if a.progress == nil {
		return nil
	}
	return func(done, total int) {
		a.progress(stage, done, total)
	}
}
