package backtest

import (
	"runtime"
	"time"

	"github.com/raykavin/backsim/pkg/logger"
	"github.com/raykavin/backsim/pkg/simulator"
	"github.com/raykavin/backsim/pkg/strategy"
)

// Config holds the settings shared by every ticker of a batch
type Config struct {
	// Cash each ticker starts with
	InitialCash float64
	// Signals before this date are ignored
	StartDate time.Time
	// Number of tickers simulated at once
	Parallelism int
	// Trailing window of bars kept per ticker, empty keeps all
	Window string
	// Logger instance
	Logger logger.Logger
	// Show a progress bar while running
	Progress bool
}

// NewConfig creates a default configuration
func NewConfig() *Config {
	return &Config{
		InitialCash: 10000,
		Parallelism: runtime.NumCPU(),
		Logger:      logger.Nop(),
	}
}

// WithInitialCash sets the cash each ticker starts with
func (c *Config) WithInitialCash(cash float64) *Config {
	c.InitialCash = cash
	return c
}

// WithStartDate sets the first date on which signals are acted on
func (c *Config) WithStartDate(start time.Time) *Config {
	c.StartDate = start
	return c
}

// WithParallelism sets the number of tickers simulated at once
func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

// WithWindow keeps only the trailing window of bars, e.g. "730d"
func (c *Config) WithWindow(window string) *Config {
	c.Window = window
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(logger logger.Logger) *Config {
	c.Logger = logger
	return c
}

// WithProgress enables the progress bar
func (c *Config) WithProgress(progress bool) *Config {
	c.Progress = progress
	return c
}

// Factory builds a fresh engine for one ticker. Strategies keep indicator
// state, so every call must return new instances.
type Factory func(ticker string, config Config) (simulator.Engine, error)

// NewEngine builds a simulator with the batch cash, start date and logger,
// followed by the given options.
func NewEngine[T strategy.State](config Config, strat strategy.Strategy[T], options ...simulator.Option) simulator.Engine {
	base := []simulator.Option{
		simulator.WithStartDate(config.StartDate),
		simulator.WithLogger(config.Logger),
	}
	return simulator.New[T](config.InitialCash, strat, append(base, options...)...)
}
