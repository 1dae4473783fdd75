package ridge

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
)

// Column names accepted by WriteDelimited
const (
	ColumnTime              = "time"
	ColumnPeriods           = "periods"
	ColumnPhase             = "phase"
	ColumnPower             = "power"
	ColumnAmplitude         = "amplitude"
	ColumnPeriodsSmoothed   = "periods_smoothed"
	ColumnAmplitudeSmoothed = "amplitude_smoothed"
)

// DefaultColumns is the export selection used when none is given
var DefaultColumns = []string{ColumnTime, ColumnPeriods, ColumnPhase, ColumnPower, ColumnAmplitude}

// Columns returns DefaultColumns plus the smoothed traces when the record
// has them
func (r *Record) Columns() []string {
	columns := append([]string(nil), DefaultColumns...)
	if r.SmoothedPeriods != nil {
		columns = append(columns, ColumnPeriodsSmoothed)
	}
	if r.SmoothedAmplitude != nil {
		columns = append(columns, ColumnAmplitudeSmoothed)
	}
	return columns
}

func (r *Record) column(name string) ([]float64, error) {
	var values []float64
	switch name {
	case ColumnTime:
		values = r.Time
	case ColumnPeriods:
		values = r.Periods
	case ColumnPhase:
		values = r.Phase
	case ColumnPower:
		values = r.Power
	case ColumnAmplitude:
		values = r.Amplitude
	case ColumnPeriodsSmoothed:
		values = r.SmoothedPeriods
	case ColumnAmplitudeSmoothed:
		values = r.SmoothedAmplitude
	default:
		return nil, fmt.Errorf("%w: unknown ridge column %q", common.ErrInvalidParameter, name)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: ridge column %q is not available", common.ErrInvalidParameter, name)
	}
	return values, nil
}

// WriteDelimited writes the selected columns of the record, one header row
// followed by one row per ridge point. sep 0 means tab. nil columns selects
// DefaultColumns.
func WriteDelimited(w io.Writer, r *Record, sep rune, columns []string) error {
	if r == nil {
		return fmt.Errorf("%w: nil ridge record", common.ErrInvalidParameter)
	}
	if columns == nil {
		columns = DefaultColumns
	}
	if sep == 0 {
		sep = '\t'
	}

	data := make([][]float64, len(columns))
	for i, name := range columns {
		values, err := r.column(name)
		if err != nil {
			return err
		}
		data[i] = values
	}

	cw := csv.NewWriter(w)
	cw.Comma = sep

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing ridge header: %w", err)
	}

	row := make([]string, len(columns))
	for i := range r.Len() {
		for c := range columns {
			row[c] = strconv.FormatFloat(data[c][i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing ridge row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
