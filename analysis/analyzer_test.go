package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/algorithms/synth"
	"github.com/RyanBlaney/sonido-tfa/analysis/config"
	"github.com/RyanBlaney/sonido-tfa/logging"
	"github.com/stretchr/testify/suite"
)

type AnalyzerSuite struct {
	suite.Suite
	signal []float64
	cfg    *config.AnalysisConfig
}

func (s *AnalyzerSuite) SetupTest() {
	sig, err := synth.Generate(synth.DefaultParams())
	s.Require().NoError(err)
	s.signal = sig.Values

	s.cfg = config.DefaultAnalysisConfig()
	s.cfg.PeriodMin = 10
	s.cfg.PeriodMax = 200
	s.cfg.StepNum = 50
	s.cfg.CutoffPeriod = 150
}

func (s *AnalyzerSuite) analyze() *Result {
	res, err := NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(context.Background(), s.signal)
	s.Require().NoError(err)
	return res
}

// interiorShare returns the fraction of ridge points between samples 150
// and 750 whose period is within tol of 70
func interiorShare(res *Result, tol float64) float64 {
	inside, total := 0, 0
	for i, col := range res.Ridge.TimeIndices {
		if col < 150 || col > 750 {
			continue
		}
		total++
		if math.Abs(res.Ridge.Periods[i]-70) <= tol {
			inside++
		}
	}
	return float64(inside) / float64(total)
}

func (s *AnalyzerSuite) TestMaxRidge() {
	res := s.analyze()

	s.Equal(config.MethodMax, res.Method)
	s.Len(res.Time, len(s.signal))
	s.Equal(s.signal, res.Raw)
	s.Require().Len(res.Trend, len(s.signal))
	for i := range res.Analyzed {
		s.InDelta(res.Raw[i]-res.Trend[i], res.Analyzed[i], 1e-12)
	}

	rows, cols := res.Spectrum.Dims()
	s.Equal(50, rows)
	s.Equal(len(s.signal), cols)
	s.Len(res.COI, cols)
	s.Len(res.Path, cols)
	s.Nil(res.Anneal)

	s.Equal(len(s.signal), res.Ridge.Len())
	s.Equal(17, res.Ridge.SmoothingWindow)
	s.Len(res.Ridge.SmoothedPeriods, res.Ridge.Len())
	s.GreaterOrEqual(interiorShare(res, 8), 0.9)

	s.Require().NotNil(res.Readout)
	s.Equal(res.Ridge.Len(), res.Readout.Points)
	s.Equal(1, res.Readout.Segments)
	s.InDelta(70, res.Readout.Periods.Quartiles.Q2, 8)
	s.InDelta(1, res.Readout.Amplitude.Quartiles.Q2, 0.2)
}

func (s *AnalyzerSuite) TestAnnealRidge() {
	s.cfg.Ridge.Method = config.MethodAnneal
	s.cfg.Ridge.Anneal.InitialPeriod = 70
	s.cfg.Ridge.Anneal.Steps = 20000

	res := s.analyze()

	s.Equal(config.MethodAnneal, res.Method)
	s.Require().NotNil(res.Anneal)
	s.Equal(res.Anneal.Path, res.Path)
	s.LessOrEqual(res.Anneal.FinalCost, res.Anneal.InitialCost)
	s.GreaterOrEqual(interiorShare(res, 8), 0.8)
}

func (s *AnalyzerSuite) TestRawSignalWithoutDetrending() {
	s.cfg.CutoffPeriod = 0
	res := s.analyze()

	s.Nil(res.Trend)
	s.Equal(res.Raw, res.Analyzed)
}

func (s *AnalyzerSuite) TestProgress() {
	stages := map[string]int{}
	analyzer := NewAnalyzer(s.cfg, &logging.NoOpLogger{})
	analyzer.SetProgress(func(stage string, done, total int) {
		stages[stage] = done
	})

	_, err := analyzer.Analyze(context.Background(), s.signal)
	s.Require().NoError(err)
	s.Equal(50, stages[StageSpectrum])
	s.NotContains(stages, StageAnneal)
}

func (s *AnalyzerSuite) TestPeriods() {
	periods, err := NewAnalyzer(s.cfg, nil).Periods(len(s.signal))
	s.Require().NoError(err)
	s.Len(periods, 50)
	s.Equal(10.0, periods[0])
	s.InDelta(200, periods[49], 1e-9)

	_, err = NewAnalyzer(s.cfg, nil).Periods(100)
	s.ErrorIs(err, common.ErrOutOfBounds)
}

func (s *AnalyzerSuite) TestErrors() {
	ctx := context.Background()

	s.cfg.PeriodMin = 1
	_, err := NewAnalyzer(s.cfg, nil).Analyze(ctx, s.signal)
	s.ErrorIs(err, common.ErrOutOfBounds)

	s.SetupTest()
	s.cfg.Dt = -1
	_, err = NewAnalyzer(s.cfg, nil).Analyze(ctx, s.signal)
	s.ErrorIs(err, common.ErrInvalidParameter)

	s.SetupTest()
	withNaN := append([]float64(nil), s.signal...)
	withNaN[10] = math.NaN()
	_, err = NewAnalyzer(s.cfg, nil).Analyze(ctx, withNaN)
	s.ErrorIs(err, common.ErrInvalidParameter)

	s.cfg.CutoffPeriod = 0
	_, err = NewAnalyzer(s.cfg, nil).Analyze(ctx, make([]float64, len(s.signal)))
	s.ErrorIs(err, common.ErrNumericDegeneracy)

	s.SetupTest()
	s.cfg.Ridge.Threshold = 1e9
	_, err = NewAnalyzer(s.cfg, nil).Analyze(ctx, s.signal)
	s.ErrorIs(err, common.ErrNoRidgeFound)
}

func (s *AnalyzerSuite) TestConstantSignal() {
	ctx := context.Background()
	constant := make([]float64, len(s.signal))
	for i := range constant {
		constant[i] = 3.7
	}

	s.cfg.CutoffPeriod = 100
	res, err := NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(ctx, constant)
	s.ErrorIs(err, common.ErrNumericDegeneracy)
	s.Nil(res)

	s.cfg.CutoffPeriod = 0
	_, err = NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(ctx, constant)
	s.ErrorIs(err, common.ErrNumericDegeneracy)

	nearly := make([]float64, len(s.signal))
	for i := range nearly {
		nearly[i] = 0.1
	}
	nearly[400] += 1e-15
	_, err = NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(ctx, nearly)
	s.ErrorIs(err, common.ErrNumericDegeneracy)

	// raw power has no variance to divide by
	s.cfg.CutoffPeriod = 100
	s.cfg.Normalization = "raw"
	_, err = NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(ctx, constant)
	s.NotErrorIs(err, common.ErrNumericDegeneracy)
}

func (s *AnalyzerSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewAnalyzer(s.cfg, &logging.NoOpLogger{}).Analyze(ctx, s.signal)
	s.ErrorIs(err, context.Canceled)
	s.Nil(res)
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerSuite))
}
