package ridge

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/logging"
	"gonum.org/v1/gonum/mat"
)

// coolingFloor is the ratio between the final and the initial temperature
const coolingFloor = 1e-4

// cancelCheckInterval is how many iterations run between context checks
const cancelCheckInterval = 1024

// AnnealParams configures the simulated annealing ridge search
type AnnealParams struct {
	InitialIndex       int     `json:"initial_index"`       // Row of the initial straight-line ridge
	InitialTemperature float64 `json:"initial_temperature"` // T_ini, 0 accepts improvements only
	Steps              int     `json:"steps"`               // Number of proposals
	MaxJump            int     `json:"max_jump"`            // Largest row change between adjacent columns
	CurvaturePenalty   float64 `json:"curvature_penalty"`   // Weight of the squared second difference
	Seed               uint64  `json:"seed"`                // PRNG seed, runs are reproducible per seed

	// Progress, if set, is called every 1024 iterations with the
	// iteration count and Steps.
	Progress func(done, total int) `json:"-"`
}

// DefaultAnnealParams returns the parameters the interactive tool starts with
func DefaultAnnealParams(initialIndex int) AnnealParams {
	return AnnealParams{
		InitialIndex:       initialIndex,
		InitialTemperature: 1,
		Steps:              5000,
		MaxJump:            3,
		CurvaturePenalty:   0,
		Seed:               1,
	}
}

// AnnealResult contains the best path found and its bookkeeping
type AnnealResult struct {
	Path        Path    `json:"path"`
	FinalCost   float64 `json:"final_cost"`   // Cost of Path
	InitialCost float64 `json:"initial_cost"` // Cost of the straight-line start
	Accepted    int     `json:"accepted"`     // Accepted proposals
	Steps       int     `json:"steps"`
}

// Annealer searches a ridge that maximizes accumulated power while
// penalizing curvature:
//
//	cost(p) = -Σ_t M[p[t], t] + λ Σ_t (p[t+1] - 2p[t] + p[t-1])²
//
// Each step moves one time index by a random non-zero jump of at most
// MaxJump rows, keeping every pair of neighbours within MaxJump of each
// other. Worse paths are accepted with probability exp(-Δ/T) under a
// geometric cooling schedule. The lowest-cost path visited is returned, so
// the result never costs more than the straight-line start.
type Annealer struct {
	params AnnealParams
	logger logging.Logger
}

// NewAnnealer creates an annealer
func NewAnnealer(params AnnealParams) *Annealer {
	return &Annealer{
		params: params,
		logger: logging.GetGlobalLogger(),
	}
}

// SetLogger replaces the annealer's logger
func (a *Annealer) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	a.logger = logger
}

func (a *Annealer) validate(rows, cols int) error {
	p := a.params
	if rows == 0 || cols == 0 {
		return fmt.Errorf("%w: empty modulus", common.ErrInvalidParameter)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("%w: annealing steps must be positive, got %d", common.ErrInvalidParameter, p.Steps)
	}
	if p.MaxJump <= 0 {
		return fmt.Errorf("%w: maximal jump must be positive, got %d", common.ErrInvalidParameter, p.MaxJump)
	}
	if p.InitialTemperature < 0 || math.IsNaN(p.InitialTemperature) || math.IsInf(p.InitialTemperature, 0) {
		return fmt.Errorf("%w: initial temperature must be finite and non-negative, got %g", common.ErrInvalidParameter, p.InitialTemperature)
	}
	if p.CurvaturePenalty < 0 || math.IsNaN(p.CurvaturePenalty) || math.IsInf(p.CurvaturePenalty, 0) {
		return fmt.Errorf("%w: curvature penalty must be finite and non-negative, got %g", common.ErrInvalidParameter, p.CurvaturePenalty)
	}
	if p.InitialIndex < 0 || p.InitialIndex >= rows {
		return fmt.Errorf("%w: initial index %d outside [0, %d)", common.ErrInvalidParameter, p.InitialIndex, rows)
	}
	return nil
}

// Temperature returns the temperature at iteration k of steps
func Temperature(initial float64, k, steps int) float64 {
	return initial * math.Pow(coolingFloor, float64(k)/float64(steps))
}

// Cost evaluates the annealing objective for an arbitrary path
func Cost(modulus mat.Matrix, path Path, curvaturePenalty float64) float64 {
	cost := 0.0
	for t, row := range path {
		cost -= modulus.At(row, t)
	}
	if curvaturePenalty == 0 {
		return cost
	}
	for t := 1; t < len(path)-1; t++ {
		c := float64(path[t+1] - 2*path[t] + path[t-1])
		cost += curvaturePenalty * c * c
	}
	return cost
}

// curvatureAround returns the curvature terms touched by moving path[t]
func curvatureAround(path Path, t int) float64 {
	sum := 0.0
	for c := t - 1; c <= t+1; c++ {
		if c < 1 || c > len(path)-2 {
			continue
		}
		d := float64(path[c+1] - 2*path[c] + path[c-1])
		sum += d * d
	}
	return sum
}

// Run anneals on modulus. Cancellation is checked every 1024 iterations;
// a cancelled run returns the context error and no path.
func (a *Annealer) Run(ctx context.Context, modulus mat.Matrix) (*AnnealResult, error) {
	if modulus == nil {
		return nil, fmt.Errorf("%w: nil modulus", common.ErrInvalidParameter)
	}
	rows, cols := modulus.Dims()
	if err := a.validate(rows, cols); err != nil {
		return nil, err
	}

	p := a.params
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	path := make(Path, cols)
	for t := range path {
		path[t] = p.InitialIndex
	}
	cost := Cost(modulus, path, p.CurvaturePenalty)
	initialCost := cost

	best := make(Path, cols)
	copy(best, path)
	bestCost := cost
	accepted := 0

	a.logger.Debug("annealing ridge", logging.Fields{
		"initial_index": p.InitialIndex,
		"steps":         p.Steps,
		"max_jump":      p.MaxJump,
		"initial_cost":  initialCost,
	})

	for k := range p.Steps {
		if k%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("ridge annealing: %w", err)
			}
			if p.Progress != nil && k > 0 {
				p.Progress(k, p.Steps)
			}
		}

		t := rng.IntN(cols)
		jump := rng.IntN(p.MaxJump) + 1
		if rng.IntN(2) == 0 {
			jump = -jump
		}

		old := path[t]
		lo, hi := moveRange(path, t, p.MaxJump, rows)
		proposed := common.ClampInt(old+jump, lo, hi)
		if proposed == old {
			continue
		}

		delta := modulus.At(old, t) - modulus.At(proposed, t)
		if p.CurvaturePenalty != 0 {
			before := curvatureAround(path, t)
			path[t] = proposed
			after := curvatureAround(path, t)
			path[t] = old
			delta += p.CurvaturePenalty * (after - before)
		}

		temp := Temperature(p.InitialTemperature, k, p.Steps)
		if delta >= 0 {
			if temp <= 0 || rng.Float64() >= math.Exp(-delta/temp) {
				continue
			}
		}

		path[t] = proposed
		cost += delta
		accepted++

		if cost < bestCost {
			bestCost = cost
			copy(best, path)
		}
	}

	if p.Progress != nil {
		p.Progress(p.Steps, p.Steps)
	}

	// Recompute to drop accumulated rounding from the incremental updates
	bestCost = Cost(modulus, best, p.CurvaturePenalty)
	if bestCost > initialCost {
		for t := range best {
			best[t] = p.InitialIndex
		}
		bestCost = initialCost
	}

	a.logger.Debug("annealing finished", logging.Fields{
		"final_cost": bestCost,
		"accepted":   accepted,
	})

	return &AnnealResult{
		Path:        best,
		FinalCost:   bestCost,
		InitialCost: initialCost,
		Accepted:    accepted,
		Steps:       p.Steps,
	}, nil
}

// moveRange returns the period indices column t may move to without breaking
// the jump limit towards either neighbour. The range always holds path[t]
// while the path itself respects the limit.
func moveRange(path Path, t, maxJump, rows int) (lo, hi int) {
	lo, hi = 0, rows-1
	if t > 0 {
		lo = max(lo, path[t-1]-maxJump)
		hi = min(hi, path[t-1]+maxJump)
	}
	if t < len(path)-1 {
		lo = max(lo, path[t+1]-maxJump)
		hi = min(hi, path[t+1]+maxJump)
	}
	return lo, hi
}
