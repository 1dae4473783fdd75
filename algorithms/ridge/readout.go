package ridge

import (
	"fmt"

	"github.com/RyanBlaney/sonido-tfa/algorithms/stats"
)

// Readout summarizes a ridge record over its unmasked points
type Readout struct {
	Points    int            `json:"points"`
	Segments  int            `json:"segments"`
	Periods   *stats.Summary `json:"periods"`
	Amplitude *stats.Summary `json:"amplitude"`
	Power     *stats.Summary `json:"power"`
}

// Readout computes the period, amplitude and power summaries of the record
func (r *Record) Readout() (*Readout, error) {
	periods, err := stats.Summarize(r.Periods)
	if err != nil {
		return nil, fmt.Errorf("ridge periods: %w", err)
	}
	amplitude, err := stats.Summarize(r.Amplitude)
	if err != nil {
		return nil, fmt.Errorf("ridge amplitude: %w", err)
	}
	power, err := stats.Summarize(r.Power)
	if err != nil {
		return nil, fmt.Errorf("ridge power: %w", err)
	}

	return &Readout{
		Points:    r.Len(),
		Segments:  len(r.Segments()),
		Periods:   periods,
		Amplitude: amplitude,
		Power:     power,
	}, nil
}
