package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/raykavin/backsim/pkg/backtest"
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/exchange"
	"github.com/raykavin/backsim/pkg/logger"
	"github.com/raykavin/backsim/pkg/metric"
	"github.com/raykavin/backsim/pkg/optimizer"
	"github.com/raykavin/backsim/pkg/simulator"
	"github.com/raykavin/backsim/pkg/storage"
)

// App runs the commands over one set of settings
type App struct {
	Settings Settings
	Log      logger.Logger
	Out      io.Writer
	Progress bool
}

// TickerFiles lists the quote files to process. Without a broker every
// .txt file of the data directory is used.
func (a *App) TickerFiles() ([]string, error) {
	if a.Settings.Broker == "" {
		files, err := filepath.Glob(filepath.Join(a.Settings.DataDir, "*.txt"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		return files, nil
	}

	available, err := exchange.LoadAvailable(exchange.AvailabilityPath(a.Settings.Root, a.Settings.Broker))
	if err != nil {
		return nil, err
	}
	a.Log.Infof("%d tickers available at %s", len(available), a.Settings.Broker)
	return exchange.TickerFiles(a.Settings.DataDir, available)
}

func (a *App) runner() (*backtest.Runner, error) {
	start, err := a.Settings.Start()
	if err != nil {
		return nil, err
	}

	return backtest.NewRunner(backtest.NewConfig().
		WithInitialCash(a.Settings.InitialCash).
		WithStartDate(start).
		WithParallelism(a.Settings.Parallelism).
		WithWindow(a.Settings.Window).
		WithLogger(a.Log).
		WithProgress(a.Progress))
}

func (a *App) reportFailures(failures map[string]error) {
	for ticker, err := range failures {
		a.Log.WithField("ticker", ticker).WithError(err).Warn("ticker skipped")
	}
}

// Backtest runs the configured strategy over every ticker and prints the
// summary. With an output directory it also writes the per-ticker trade and
// indicator tables.
func (a *App) Backtest(ctx context.Context, outputDir string) (map[string]*backtest.Result, error) {
	files, err := a.TickerFiles()
	if err != nil {
		return nil, err
	}

	factory, err := a.Settings.Factory(nil, nil)
	if err != nil {
		return nil, err
	}

	runner, err := a.runner()
	if err != nil {
		return nil, err
	}

	results, failures := runner.Run(ctx, files, factory)
	a.reportFailures(failures)
	backtest.PrintSummary(a.Out, results)

	if outputDir != "" {
		if err := writeTables(outputDir, results); err != nil {
			return results, err
		}
	}
	return results, nil
}

func writeTables(dir string, results map[string]*backtest.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for ticker, result := range results {
		base := filepath.Join(dir, strings.ToLower(ticker))
		for _, kind := range simulator.Kinds {
			err := writeFile(fmt.Sprintf("%s_%s.csv", base, kind), func(w io.Writer) error {
				return backtest.WriteTradeTable(w, result.Days, kind)
			})
			if err != nil {
				return err
			}
		}

		err := writeFile(base+"_indicators.csv", func(w io.Writer) error {
			return backtest.WriteIndicatorTable(w, result.Days)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// loadBars reads every file once, skipping the ones that fail
func (a *App) loadBars(files []string) (map[string][]core.PriceBar, error) {
	bars := make(map[string][]core.PriceBar, len(files))
	for _, file := range files {
		tickerBars, err := exchange.ReadBars(file)
		if err != nil {
			a.Log.WithError(err).Warn("ticker skipped")
			continue
		}
		bars[exchange.TickerFromFile(file)] = tickerBars
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no readable quote files among %d", len(files))
	}
	return bars, nil
}

type searcher interface {
	Optimize(ctx context.Context, objective optimizer.Objective) ([]*optimizer.Result, error)
}

// Grid scores every combination of the configured axes by the average ROI
// across tickers.
func (a *App) Grid(ctx context.Context) ([]*optimizer.Result, error) {
	return a.search(ctx, func(config *optimizer.Config) (searcher, error) {
		return optimizer.NewGridSearch(config)
	})
}

// Random scores Grid.Iterations points drawn from the configured axes. A
// point drawn twice is scored once.
func (a *App) Random(ctx context.Context) ([]*optimizer.Result, error) {
	store, err := storage.FromMemory()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return a.search(ctx, func(config *optimizer.Config) (searcher, error) {
		config.WithMaxIterations(a.Settings.Grid.Iterations).
			WithSeed(a.Settings.Grid.Seed).
			WithCache(storage.NewCache(store, a.Settings.Strategy.Name))
		return optimizer.NewRandomSearch(config)
	})
}

func (a *App) search(ctx context.Context, build func(config *optimizer.Config) (searcher, error)) ([]*optimizer.Result, error) {
	params := a.Settings.Grid.Parameters()
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Name
	}

	files, err := a.TickerFiles()
	if err != nil {
		return nil, err
	}
	bars, err := a.loadBars(files)
	if err != nil {
		return nil, err
	}

	runner, err := a.runner()
	if err != nil {
		return nil, err
	}

	objective := func(ctx context.Context, values []float64) (float64, error) {
		factory, err := a.Settings.Factory(names, values)
		if err != nil {
			return 0, err
		}
		results, failures := runner.RunBars(ctx, bars, factory)
		if len(results) == 0 {
			return 0, fmt.Errorf("every ticker failed (%d)", len(failures))
		}
		return metric.AverageROI(backtest.ROIs(results)), nil
	}

	config := optimizer.NewConfig().
		WithParameters(params...).
		WithParallelism(a.Settings.Parallelism).
		WithLogger(a.Log).
		WithFailFast(a.Settings.Grid.FailFast).
		WithIndexedValues(a.Settings.Grid.Indexed).
		WithTopN(a.Settings.Grid.TopN).
		WithProgress(a.Progress)

	search, err := build(config)
	if err != nil {
		return nil, err
	}

	results, err := search.Optimize(ctx, objective)
	if err != nil {
		return results, err
	}

	cached := lo.CountBy(results, func(result *optimizer.Result) bool { return result.Cached })
	a.Log.Infof("%d points scored, %d repeated", len(results), cached)

	optimizer.PrintResults(a.Out, params, results, true, config.TopN)
	if best, ok := optimizer.Best(results, true); ok {
		fmt.Fprintf(a.Out, "BEST: %s => %.4f\n", optimizer.FormatValues(params, best.Values), best.Score)
	}

	if output := a.Settings.Grid.Output; output != "" {
		err := writeFile(output, func(w io.Writer) error {
			return optimizer.SaveResultsToCSV(w, params, results)
		})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// MonteCarlo backtests every ticker, then repeatedly invests in a random
// subset of them and reports the distribution of the combined final cash.
func (a *App) MonteCarlo(ctx context.Context) ([]float64, error) {
	files, err := a.TickerFiles()
	if err != nil {
		return nil, err
	}

	factory, err := a.Settings.Factory(nil, nil)
	if err != nil {
		return nil, err
	}

	runner, err := a.runner()
	if err != nil {
		return nil, err
	}

	results, failures := runner.Run(ctx, files, factory)
	a.reportFailures(failures)

	finalCash := make([]float64, 0, len(results))
	for _, ticker := range backtest.Tickers(results) {
		finalCash = append(finalCash, results[ticker].FinalCash)
	}

	var rng *rand.Rand
	if seed := a.Settings.MonteCarlo.Seed; seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	settings := a.Settings.MonteCarlo
	draws, err := metric.MonteCarlo(rng, finalCash, settings.Draws, settings.Pick)
	if err != nil {
		return nil, err
	}

	investment := float64(settings.Pick) * a.Settings.InitialCash
	dist := metric.Summarize(draws)

	fmt.Fprintf(a.Out, "TICKERS: %d  DRAWS: %d  PICK: %d  INVESTMENT: %.2f\n",
		len(finalCash), len(draws), settings.Pick, investment)
	fmt.Fprintf(a.Out, "AVERAGE: %.2f  PROFITABLE: %d/%d\n",
		metric.AverageROI(draws), metric.ProfitableCount(draws, investment), len(draws))
	fmt.Fprintf(a.Out, "P5: %.2f  MEDIAN: %.2f  P95: %.2f  STDDEV: %.2f\n",
		dist.P5, dist.Median, dist.P95, dist.StdDev)
	if len(draws) > 0 {
		_ = histogram.Fprint(a.Out, histogram.Hist(15, draws), histogram.Linear(10))
	}

	if settings.Output != "" {
		err := writeFile(settings.Output, func(w io.Writer) error {
			return metric.WriteColumn(w, draws)
		})
		if err != nil {
			return draws, err
		}
	}
	return draws, nil
}

// Reference writes the streaming and TA-Lib indicators of one quote file
func (a *App) Reference(path string, length int) error {
	bars, err := exchange.ReadBars(path)
	if err != nil {
		return err
	}
	bars, err = exchange.Limit(bars, a.Settings.Window)
	if err != nil {
		return err
	}
	return backtest.WriteReferenceTable(a.Out, bars, length)
}
