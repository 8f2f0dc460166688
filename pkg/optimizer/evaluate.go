package optimizer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/raykavin/backsim/pkg/logger"
)

// runEvaluations scores every point with at most config.Parallelism
// evaluations in flight. Each evaluation writes its own slot, so results keep
// the order of points whatever the completion order. Points left unevaluated
// after a cancellation or a fail-fast abort stay nil.
func runEvaluations(ctx context.Context, config *Config, objective Objective, points [][]float64) ([]*Result, error) {
	var (
		results   = make([]*Result, len(points))
		mutex     sync.Mutex
		completed int
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, config.Parallelism)
		log       = loggerOf(config)
	)

	var bar *progressbar.ProgressBar
	if config.Progress {
		bar = progressbar.Default(int64(len(points)), "evaluating")
	}

	wait := func(err error) ([]*Result, error) {
		wg.Wait()
		return results, err
	}

	for i, point := range points {
		select {
		case <-ctx.Done():
			return wait(ctx.Err())
		case err := <-errCh:
			return wait(err)
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(index int, values []float64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := cachedEvaluate(ctx, config.Cache, objective, values, log)
			results[index] = result

			mutex.Lock()
			completed++
			done := completed
			mutex.Unlock()

			if bar != nil {
				_ = bar.Add(1)
			}

			if result.Err != nil {
				log.WithError(result.Err).Warnf("point %d/%d %v failed", index+1, len(points), values)
				if config.FailFast {
					select {
					case errCh <- fmt.Errorf("evaluation of %v: %w", values, result.Err):
					default:
					}
				}
				return
			}
			log.Debugf("point %d/%d %v scored %.4f (%d done)", index+1, len(points), values, result.Score, done)
		}(i, point)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return results, err
	default:
		return results, nil
	}
}

func evaluate(ctx context.Context, objective Objective, values []float64) (result *Result) {
	start := time.Now()
	result = &Result{Values: values, Score: math.NaN()}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("objective panicked: %v", r)
			result.Score = math.NaN()
		}
		result.Duration = time.Since(start)
	}()

	score, err := objective(ctx, values)
	if err != nil {
		result.Err = err
		return result
	}
	result.Score = score
	return result
}

// cachedEvaluate returns the stored score of a point when there is one and
// stores fresh finite scores. Cache failures only cost a re-evaluation.
func cachedEvaluate(ctx context.Context, cache Cache, objective Objective, values []float64, log logger.Logger) *Result {
	if cache == nil {
		return evaluate(ctx, objective, values)
	}

	score, ok, err := cache.Lookup(values)
	if err != nil {
		log.WithError(err).Warnf("cache lookup of %v failed", values)
	}
	if ok {
		return &Result{Values: values, Score: score, Cached: true}
	}

	result := evaluate(ctx, objective, values)
	if result.Err == nil && !math.IsNaN(result.Score) && !math.IsInf(result.Score, 0) {
		if err := cache.Store(values, result.Score); err != nil {
			log.WithError(err).Warnf("cache store of %v failed", values)
		}
	}
	return result
}

func loggerOf(config *Config) logger.Logger {
	if config.Logger == nil {
		return logger.Nop()
	}
	return config.Logger
}
