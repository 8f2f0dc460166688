package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/backsim/pkg/logger"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// indexEpsilon absorbs the rounding of (Max-Min)/Step when the range is an
// exact multiple of the step.
const indexEpsilon = 1e-9

// MaxAxisValues bounds the number of values a single axis may sample
const MaxAxisValues = 1_000_000

// Parameter is one numeric axis of a search space
type Parameter struct {
	Name        string  // Name of the parameter
	Description string  // Description of what the parameter does
	Min         float64 // First sampled value
	Max         float64 // Last sampled value, inclusive
	Step        float64 // Distance between sampled values
}

// Validate checks that the axis produces at least one value
func (p Parameter) Validate() error {
	if !(p.Step > 0) || math.IsInf(p.Step, 1) {
		return fmt.Errorf("%w: %s step must be positive, got %v", ErrInvalidParameter, p.Name, p.Step)
	}
	if p.Max < p.Min || math.IsNaN(p.Min) || math.IsNaN(p.Max) {
		return fmt.Errorf("%w: %s max %v below min %v", ErrInvalidParameter, p.Name, p.Max, p.Min)
	}
	// the step must move the value at both ends, where the spacing of
	// float64 values is widest
	if p.Min+p.Step == p.Min || p.Max+p.Step == p.Max {
		return fmt.Errorf("%w: %s step %v is lost in the rounding of %v..%v", ErrInvalidParameter, p.Name, p.Step, p.Min, p.Max)
	}
	if span := (p.Max - p.Min) / p.Step; !(span < MaxAxisValues) {
		return fmt.Errorf("%w: %s samples more than %d values", ErrInvalidParameter, p.Name, MaxAxisValues)
	}
	return nil
}

// Values samples the axis from Min to Max by repeated addition of Step.
// The running value accumulates rounding error, so a Max that is an exact
// multiple of Step on paper may be left out: {0, 0.3, 0.1} yields 0, 0.1 and
// 0.2 only. IndexedValues does not drift.
func (p Parameter) Values() []float64 {
	if p.Validate() != nil {
		return nil
	}

	var values []float64
	for v := p.Min; v <= p.Max; v += p.Step {
		values = append(values, v)
	}
	return values
}

// IndexedValues samples the axis as Min + i*Step for
// i in [0, floor((Max-Min)/Step)], clamping the last value to Max.
func (p Parameter) IndexedValues() []float64 {
	if p.Validate() != nil {
		return nil
	}

	count := int(math.Floor((p.Max-p.Min)/p.Step+indexEpsilon)) + 1
	values := make([]float64, count)
	for i := range values {
		values[i] = math.Min(p.Min+float64(i)*p.Step, p.Max)
	}
	return values
}

// Count returns the number of values of the axis
func (p Parameter) Count() int {
	return len(p.Values())
}

// Objective scores one point of the search space. values holds one entry per
// parameter, in parameter order. An objective that fans out must join its
// workers before returning.
type Objective func(ctx context.Context, values []float64) (float64, error)

// Result represents the outcome of a single evaluation
type Result struct {
	Values   []float64     // The parameter values used
	Score    float64       // Objective value, NaN if the evaluation failed
	Err      error         // Evaluation error, if any
	Duration time.Duration // How long the evaluation took
	Cached   bool          // Score came from Config.Cache
}

// Cache remembers the scores of evaluated points across searches
type Cache interface {
	Lookup(values []float64) (score float64, ok bool, err error)
	Store(values []float64, score float64) error
}

// Failed reports whether the point could not be scored
func (r *Result) Failed() bool {
	return r == nil || r.Err != nil || math.IsNaN(r.Score)
}

// Config holds configuration for the optimization process
type Config struct {
	// Parameters to optimize, outermost axis first
	Parameters []Parameter
	// Number of random draws, ignored by grid search
	MaxIterations int
	// Number of parallel evaluations
	Parallelism int
	// Logger instance
	Logger logger.Logger
	// Whether to maximize (true) or minimize (false) the objective
	Maximize bool
	// Top N results to print
	TopN int
	// Abort the whole search on the first failing point
	FailFast bool
	// Sample axes with Parameter.IndexedValues instead of Parameter.Values
	Indexed bool
	// Seed of the random search, zero picks a time based seed
	Seed int64
	// Show a progress bar on stderr
	Progress bool
	// Scores of points evaluated before, nil evaluates every point
	Cache Cache
}

// NewConfig creates a default configuration
func NewConfig() *Config {
	return &Config{
		Parameters:    []Parameter{},
		MaxIterations: 100,
		Parallelism:   1,
		Logger:        logger.Nop(),
		Maximize:      true,
		TopN:          5,
	}
}

// WithParameters adds parameters to the configuration
func (c *Config) WithParameters(params ...Parameter) *Config {
	c.Parameters = append(c.Parameters, params...)
	return c
}

// WithMaxIterations sets the number of random draws
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithParallelism sets the number of parallel evaluations
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(logger logger.Logger) *Config {
	c.Logger = logger
	return c
}

// WithMaximize sets the optimization direction
func (c *Config) WithMaximize(maximize bool) *Config {
	c.Maximize = maximize
	return c
}

// WithTopN sets the number of top results to print
func (c *Config) WithTopN(n int) *Config {
	c.TopN = n
	return c
}

// WithFailFast makes the first failing point abort the search
func (c *Config) WithFailFast(failFast bool) *Config {
	c.FailFast = failFast
	return c
}

// WithIndexedValues samples axes by index instead of by accumulation
func (c *Config) WithIndexedValues(indexed bool) *Config {
	c.Indexed = indexed
	return c
}

// WithSeed fixes the seed of the random search
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

// WithCache reuses scores stored by earlier searches
func (c *Config) WithCache(cache Cache) *Config {
	c.Cache = cache
	return c
}

// WithProgress enables the progress bar
func (c *Config) WithProgress(progress bool) *Config {
	c.Progress = progress
	return c
}

// Validate checks every parameter of the configuration
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	for _, param := range c.Parameters {
		if err := param.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) axis(param Parameter) []float64 {
	if c.Indexed {
		return param.IndexedValues()
	}
	return param.Values()
}

// ResultSorter sorts results by score, failed points last
type ResultSorter struct {
	Results  []*Result
	Maximize bool
}

// Len returns the number of results
func (s ResultSorter) Len() int {
	return len(s.Results)
}

// Swap swaps two results
func (s ResultSorter) Swap(i, j int) {
	s.Results[i], s.Results[j] = s.Results[j], s.Results[i]
}

// Less compares two results based on their score
func (s ResultSorter) Less(i, j int) bool {
	failedI, failedJ := s.Results[i].Failed(), s.Results[j].Failed()
	if failedI || failedJ {
		return !failedI && failedJ
	}

	if s.Maximize {
		return s.Results[i].Score > s.Results[j].Score
	}
	return s.Results[i].Score < s.Results[j].Score
}

// Best returns the best scored result, skipping failed points
func Best(results []*Result, maximize bool) (*Result, bool) {
	var best *Result
	for _, result := range results {
		if result.Failed() {
			continue
		}
		if best == nil ||
			(maximize && result.Score > best.Score) ||
			(!maximize && result.Score < best.Score) {
			best = result
		}
	}
	return best, best != nil
}
