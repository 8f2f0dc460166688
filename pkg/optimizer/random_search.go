package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RandomSearch evaluates an objective over points drawn uniformly from the
// sampled values of each axis.
type RandomSearch struct {
	config *Config
	rng    *rand.Rand
}

// NewRandomSearch creates a new random search optimizer
func NewRandomSearch(config *Config) (*RandomSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(config.Parameters) == 0 {
		return nil, fmt.Errorf("at least one parameter must be provided")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSearch{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// SetMaxIterations sets the number of draws
func (r *RandomSearch) SetMaxIterations(iterations int) {
	r.config.MaxIterations = iterations
}

// Points draws config.MaxIterations points. Draws may repeat.
func (r *RandomSearch) Points() [][]float64 {
	axes := make([][]float64, len(r.config.Parameters))
	for i, param := range r.config.Parameters {
		axes[i] = r.config.axis(param)
	}

	points := make([][]float64, 0, r.config.MaxIterations)
	for i := 0; i < r.config.MaxIterations; i++ {
		point := make([]float64, len(axes))
		for axis, values := range axes {
			point[axis] = values[r.rng.Intn(len(values))]
		}
		points = append(points, point)
	}
	return points
}

// Optimize scores the drawn points, results follow the draw order
func (r *RandomSearch) Optimize(ctx context.Context, objective Objective) ([]*Result, error) {
	if objective == nil {
		return nil, fmt.Errorf("objective cannot be nil")
	}

	points := r.Points()
	log := loggerOf(r.config)
	log.Infof("Starting random search with %d iterations", len(points))

	results, err := runEvaluations(ctx, r.config, objective, points)
	if err != nil {
		return results, err
	}

	log.Infof("Random search completed with %d results", len(results))
	return results, nil
}
