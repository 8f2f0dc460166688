package backtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/exchange"
	"github.com/raykavin/backsim/pkg/logger"
)

// Runner backtests many tickers concurrently. Every ticker gets its own
// engine, so the only shared state is the result maps.
type Runner struct {
	config Config
	log    logger.Logger
}

// NewRunner creates a runner
func NewRunner(config *Config) (*Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", config.Parallelism)
	}
	if config.InitialCash < 0 {
		return nil, fmt.Errorf("initial cash cannot be negative, got %.2f", config.InitialCash)
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{config: *config, log: log}, nil
}

// job loads the bars of one ticker
type job struct {
	ticker string
	load   func() ([]core.PriceBar, error)
}

// Run backtests every quote file. A ticker that fails to load or simulate is
// reported in the error map and does not affect the others.
func (r *Runner) Run(ctx context.Context, files []string, factory Factory) (map[string]*Result, map[string]error) {
	jobs := make([]job, 0, len(files))
	for _, file := range files {
		path := file
		jobs = append(jobs, job{
			ticker: exchange.TickerFromFile(path),
			load: func() ([]core.PriceBar, error) {
				return exchange.ReadBars(path)
			},
		})
	}
	return r.run(ctx, jobs, factory)
}

// RunBars backtests bars already in memory, keyed by ticker
func (r *Runner) RunBars(ctx context.Context, bars map[string][]core.PriceBar, factory Factory) (map[string]*Result, map[string]error) {
	jobs := make([]job, 0, len(bars))
	for ticker, tickerBars := range bars {
		tickerBars := tickerBars
		jobs = append(jobs, job{
			ticker: ticker,
			load: func() ([]core.PriceBar, error) {
				if err := core.ValidateBars(tickerBars); err != nil {
					return nil, err
				}
				return tickerBars, nil
			},
		})
	}
	return r.run(ctx, jobs, factory)
}

func (r *Runner) run(ctx context.Context, jobs []job, factory Factory) (map[string]*Result, map[string]error) {
	var (
		results   = make(map[string]*Result, len(jobs))
		failures  = make(map[string]error)
		mutex     sync.Mutex
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, r.config.Parallelism)
	)

	var bar *progressbar.ProgressBar
	if r.config.Progress {
		bar = progressbar.Default(int64(len(jobs)), "backtesting")
	}

	cancel := func(skipped []job) (map[string]*Result, map[string]error) {
		wg.Wait()
		for _, j := range skipped {
			failures[j.ticker] = ctx.Err()
		}
		return results, failures
	}

	for i, j := range jobs {
		if ctx.Err() != nil {
			return cancel(jobs[i:])
		}
		select {
		case <-ctx.Done():
			return cancel(jobs[i:])
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result, err := r.runJob(j, factory)

			mutex.Lock()
			if err != nil {
				failures[j.ticker] = err
			} else {
				results[j.ticker] = result
			}
			mutex.Unlock()

			if bar != nil {
				_ = bar.Add(1)
			}
		}(j)
	}

	wg.Wait()
	r.log.Infof("Backtest completed: %d tickers, %d failed", len(results), len(failures))
	return results, failures
}

func (r *Runner) runJob(j job, factory Factory) (result *Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s: simulation panicked: %v", j.ticker, recovered)
		}
		if err != nil {
			r.log.WithField("ticker", j.ticker).WithError(err).Error("backtest failed")
		}
	}()

	bars, err := j.load()
	if err != nil {
		return nil, err
	}

	bars, err = exchange.Limit(bars, r.config.Window)
	if err != nil {
		return nil, err
	}

	engine, err := factory(j.ticker, r.config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.ticker, err)
	}

	result, err = Simulate(j.ticker, engine, bars)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(map[string]any{
		"ticker": j.ticker,
		"days":   len(result.Days),
		"roi":    result.ROI(),
	}).Debug("ticker done")
	return result, nil
}

// ROIs returns the ROI of every result, sorted by ticker
func ROIs(results map[string]*Result) []float64 {
	rois := make([]float64, 0, len(results))
	for _, ticker := range Tickers(results) {
		rois = append(rois, results[ticker].ROI())
	}
	return rois
}
