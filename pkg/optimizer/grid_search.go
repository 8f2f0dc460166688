package optimizer

import (
	"context"
	"fmt"
)

// GridSearch evaluates an objective over the full Cartesian product of the
// configured axes.
type GridSearch struct {
	config *Config
}

// NewGridSearch creates a new grid search optimizer
func NewGridSearch(config *Config) (*GridSearch, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &GridSearch{config: config}, nil
}

// SetParameters sets the axes to be searched
func (g *GridSearch) SetParameters(params []Parameter) error {
	for _, param := range params {
		if err := param.Validate(); err != nil {
			return err
		}
	}
	g.config.Parameters = params
	return nil
}

// SetParallelism sets the number of parallel evaluations
func (g *GridSearch) SetParallelism(n int) {
	if n > 0 {
		g.config.Parallelism = n
	}
}

// Size returns the number of points of the grid
func (g *GridSearch) Size() int {
	size := 1
	for _, param := range g.config.Parameters {
		size *= len(g.config.axis(param))
	}
	return size
}

// Points enumerates the grid in lexicographic order, the last axis varying
// fastest. An empty parameter list has a single empty point.
func (g *GridSearch) Points() [][]float64 {
	axes := make([][]float64, len(g.config.Parameters))
	for i, param := range g.config.Parameters {
		axes[i] = g.config.axis(param)
		if len(axes[i]) == 0 {
			return nil
		}
	}

	points := make([][]float64, 0, g.Size())
	counters := make([]int, len(axes))
	for {
		point := make([]float64, len(axes))
		for axis, counter := range counters {
			point[axis] = axes[axis][counter]
		}
		points = append(points, point)

		// advance the odometer, carrying into outer axes
		axis := len(axes) - 1
		for ; axis >= 0; axis-- {
			counters[axis]++
			if counters[axis] < len(axes[axis]) {
				break
			}
			counters[axis] = 0
		}
		if axis < 0 {
			return points
		}
	}
}

// Optimize scores every point of the grid. Results follow the order of
// Points. A failing point keeps its slot with Err set and a NaN score unless
// the configuration asks to fail fast.
func (g *GridSearch) Optimize(ctx context.Context, objective Objective) ([]*Result, error) {
	if objective == nil {
		return nil, fmt.Errorf("objective cannot be nil")
	}

	points := g.Points()
	log := loggerOf(g.config)
	log.Infof("Starting grid search with %d parameter combinations", len(points))

	results, err := runEvaluations(ctx, g.config, objective, points)
	if err != nil {
		return results, err
	}

	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	log.Infof("Grid search completed with %d results, %d failed", len(results), failed)
	return results, nil
}
