package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"gopkg.in/yaml.v3"
)

// Ridge tracing methods
const (
	MethodMax    = "max"
	MethodAnneal = "anneal"
)

// LargeGridSteps is the grid size above which the analyzer warns that the
// spectrum will be slow to compute
const LargeGridSteps = 1000

// AnalysisConfig configures one wavelet analysis run
type AnalysisConfig struct {
	// Sampling
	Dt       float64 `json:"dt" yaml:"dt"`               // Sampling interval
	TimeUnit string  `json:"time_unit" yaml:"time_unit"` // Label only, e.g. "min"

	// Period grid, linearly spaced
	PeriodMin float64 `json:"period_min" yaml:"period_min"`
	PeriodMax float64 `json:"period_max" yaml:"period_max"`
	StepNum   int     `json:"step_num" yaml:"step_num"`

	// Detrending, CutoffPeriod 0 analyses the raw signal
	CutoffPeriod float64 `json:"cutoff_period" yaml:"cutoff_period"`
	SincOrder    int     `json:"sinc_order,omitempty" yaml:"sinc_order,omitempty"`

	// Spectrum
	Normalization string `json:"normalization" yaml:"normalization"` // "variance" or "raw"
	Workers       int    `json:"workers,omitempty" yaml:"workers,omitempty"`

	Ridge RidgeConfig `json:"ridge" yaml:"ridge"`
}

// RidgeConfig selects and tunes the ridge tracer
type RidgeConfig struct {
	Method          string       `json:"method" yaml:"method"` // "max" or "anneal"
	Threshold       float64      `json:"threshold" yaml:"threshold"`
	SmoothingWindow int          `json:"smoothing_window" yaml:"smoothing_window"`
	Anneal          AnnealConfig `json:"anneal" yaml:"anneal"`
}

// AnnealConfig holds the simulated annealing parameters
type AnnealConfig struct {
	// InitialPeriod is the straight-line starting guess, 0 uses the middle
	// of the period range
	InitialPeriod      float64 `json:"initial_period" yaml:"initial_period"`
	InitialTemperature float64 `json:"initial_temperature" yaml:"initial_temperature"`
	Steps              int     `json:"steps" yaml:"steps"`
	MaxJump            int     `json:"max_jump" yaml:"max_jump"`
	CurvaturePenalty   float64 `json:"curvature_penalty" yaml:"curvature_penalty"`
	Seed               uint64  `json:"seed" yaml:"seed"`
}

// DefaultAnnealConfig returns the annealing defaults of the interactive tool
func DefaultAnnealConfig() AnnealConfig {
	return AnnealConfig{
		InitialPeriod:      0,
		InitialTemperature: 1,
		Steps:              5000,
		MaxJump:            3,
		CurvaturePenalty:   0,
		Seed:               1,
	}
}

// DefaultRidgeConfig returns a max-ridge configuration without threshold,
// smoothed over 17 samples
func DefaultRidgeConfig() RidgeConfig {
	return RidgeConfig{
		Method:          MethodMax,
		Threshold:       0,
		SmoothingWindow: 17,
		Anneal:          DefaultAnnealConfig(),
	}
}

// DefaultAnalysisConfig returns sensible defaults for unit sampling
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Dt:            1,
		TimeUnit:      "min",
		PeriodMin:     10,
		PeriodMax:     200,
		StepNum:       200,
		CutoffPeriod:  0,
		Normalization: "variance",
		Ridge:         DefaultRidgeConfig(),
	}
}

// Validate checks the parameters that do not depend on the signal. Period
// bounds against the signal length are checked by the analyzer.
func (c *AnalysisConfig) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: sampling interval must be positive, got %g", common.ErrInvalidParameter, c.Dt)
	}
	if c.StepNum < 1 {
		return fmt.Errorf("%w: step number must be at least 1, got %d", common.ErrInvalidParameter, c.StepNum)
	}
	if c.PeriodMin <= 0 {
		return fmt.Errorf("%w: smallest period must be positive, got %g", common.ErrInvalidParameter, c.PeriodMin)
	}
	if c.StepNum > 1 && c.PeriodMax <= c.PeriodMin {
		return fmt.Errorf("%w: largest period %g must exceed smallest period %g", common.ErrInvalidParameter, c.PeriodMax, c.PeriodMin)
	}
	if c.CutoffPeriod < 0 {
		return fmt.Errorf("%w: cutoff period must not be negative, got %g", common.ErrInvalidParameter, c.CutoffPeriod)
	}
	switch c.Normalization {
	case "", "variance", "raw":
	default:
		return fmt.Errorf("%w: unknown normalization %q", common.ErrInvalidParameter, c.Normalization)
	}
	return c.Ridge.Validate()
}

// Validate checks the ridge settings
func (r *RidgeConfig) Validate() error {
	if r.Threshold < 0 {
		return fmt.Errorf("%w: power threshold must be non-negative, got %g", common.ErrInvalidParameter, r.Threshold)
	}
	if r.SmoothingWindow < 0 {
		return fmt.Errorf("%w: smoothing window must be non-negative, got %d", common.ErrInvalidParameter, r.SmoothingWindow)
	}

	switch r.Method {
	case MethodMax:
		return nil
	case MethodAnneal:
		a := r.Anneal
		if a.Steps <= 0 {
			return fmt.Errorf("%w: annealing steps must be positive, got %d", common.ErrInvalidParameter, a.Steps)
		}
		if a.MaxJump <= 0 {
			return fmt.Errorf("%w: maximal jump must be positive, got %d", common.ErrInvalidParameter, a.MaxJump)
		}
		if a.InitialTemperature < 0 {
			return fmt.Errorf("%w: initial temperature must be non-negative, got %g", common.ErrInvalidParameter, a.InitialTemperature)
		}
		if a.CurvaturePenalty < 0 {
			return fmt.Errorf("%w: curvature penalty must be non-negative, got %g", common.ErrInvalidParameter, a.CurvaturePenalty)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown ridge method %q", common.ErrInvalidParameter, r.Method)
	}
}

// Load decodes a YAML document over the defaults, so a file only needs the
// keys it changes
func Load(data []byte) (*AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding analysis config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file
func LoadFile(path string) (*AnalysisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis config: %w", err)
	}
	return Load(data)
}
