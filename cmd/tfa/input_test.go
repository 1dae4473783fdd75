package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-tfa/algorithms/synth"
	"github.com/RyanBlaney/sonido-tfa/analysis"
	"github.com/RyanBlaney/sonido-tfa/analysis/config"
	"github.com/RyanBlaney/sonido-tfa/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadColumn(t *testing.T) {
	input := `# exported trace
time	cell_1	cell_2
0	1.5	2
1	NaN	3
2		4
3	-0.25	5e-1
`
	values, dropped, err := readColumn(strings.NewReader(input), 1, "\t")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -0.25}, values)
	assert.Equal(t, 2, dropped)

	values, dropped, err = readColumn(strings.NewReader(input), 2, "\t")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4, 0.5}, values)
	assert.Zero(t, dropped)
}

func TestReadColumnMissingMarkers(t *testing.T) {
	input := "frame,area\n0,12.5\n1,NA\n2,n/a\n3,13\n4,-\n5,12\n"
	values, dropped, err := readColumn(strings.NewReader(input), 1, ",")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 13, 12}, values)
	assert.Equal(t, 3, dropped)

	// text after the first data row is missing, not a header
	values, dropped, err = readColumn(strings.NewReader("1\nabc\n2\n"), 0, ",")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, values)
	assert.Equal(t, 1, dropped)
}

func TestReadColumnWhitespace(t *testing.T) {
	values, _, err := readColumn(strings.NewReader("1 2\n3   4\n\n5\t6\n"), 1, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, values)
}

func TestReadColumnErrors(t *testing.T) {
	_, _, err := readColumn(strings.NewReader("1,2\n3\n"), 1, ",")
	assert.Error(t, err, "short row")

	_, _, err = readColumn(strings.NewReader("1\n"), -1, ",")
	assert.Error(t, err)
}

func TestWriteColumn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeColumn(&buf, "signal", []float64{1, 0.5, -2}))
	assert.Equal(t, "signal\n1\n0.5\n-2\n", buf.String())

	values, _, err := readColumn(&buf, 0, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, -2}, values)
}

func TestRenderHTML(t *testing.T) {
	sig, err := synth.Generate(synth.Params{Samples: 300, Amplitude: 1, Period: 30, Seed: 1})
	require.NoError(t, err)

	cfg := config.DefaultAnalysisConfig()
	cfg.PeriodMin = 10
	cfg.PeriodMax = 100
	cfg.StepNum = 20
	cfg.CutoffPeriod = 80

	res, err := analysis.NewAnalyzer(cfg, &logging.NoOpLogger{}).Analyze(t.Context(), sig.Values)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderHTML(&buf, "synthetic", res))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "wavelet power (variance)")
	assert.Contains(t, html, "Ridge")
}
