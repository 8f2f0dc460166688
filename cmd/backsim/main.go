package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raykavin/backsim/internal/cli"
	"github.com/raykavin/backsim/pkg/logger/zerolog"
)

// Command line flags
var (
	configFile  string
	dataDir     string
	broker      string
	strategy    string
	startDate   string
	window      string
	parallelism int
	logLevel    string
	progress    bool
	outputDir   string
	output      string
	iterations  int
	draws       int
	pick        int
	seed        int64
	length      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "backsim",
		Short:   "Daily bar backtesting, grid search and Monte Carlo resampling",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML settings file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Directory with <ticker>.txt quote files")
	rootCmd.PersistentFlags().StringVarP(&broker, "broker", "b", "", "Availability list name (e.g. mbank)")
	rootCmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", "", "Strategy name")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "", "Start date (e.g. 2021-01-04)")
	rootCmd.PersistentFlags().StringVarP(&window, "window", "w", "", "Trailing window of bars (e.g. 730d)")
	rootCmd.PersistentFlags().IntVarP(&parallelism, "parallelism", "p", 0, "Tickers simulated at once")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&progress, "progress", false, "Show a progress bar")

	rootCmd.AddCommand(buildBacktestCmd(), buildGridCmd(), buildRandomCmd(), buildMonteCarloCmd(), buildReferenceCmd(), buildStrategiesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest the strategy over every available ticker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			_, err = app.Backtest(cmd.Context(), outputDir)
			return err
		},
	}
	backtestCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for trade and indicator tables")
	return backtestCmd
}

func buildGridCmd() *cobra.Command {
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "Search the strategy parameters configured as grid axes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if output != "" {
				app.Settings.Grid.Output = output
			}
			_, err = app.Grid(cmd.Context())
			return err
		},
	}
	gridCmd.Flags().StringVarP(&output, "output", "o", "", "CSV file for the grid results")
	return gridCmd
}

func buildRandomCmd() *cobra.Command {
	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Score random draws from the strategy parameters configured as grid axes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if output != "" {
				app.Settings.Grid.Output = output
			}
			if iterations > 0 {
				app.Settings.Grid.Iterations = iterations
			}
			if seed != 0 {
				app.Settings.Grid.Seed = seed
			}
			_, err = app.Random(cmd.Context())
			return err
		},
	}
	randomCmd.Flags().StringVarP(&output, "output", "o", "", "CSV file for the search results")
	randomCmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Number of draws")
	randomCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 is random)")
	return randomCmd
}

func buildMonteCarloCmd() *cobra.Command {
	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Resample the per-ticker results of a backtest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if output != "" {
				app.Settings.MonteCarlo.Output = output
			}
			if draws > 0 {
				app.Settings.MonteCarlo.Draws = draws
			}
			if pick > 0 {
				app.Settings.MonteCarlo.Pick = pick
			}
			if seed != 0 {
				app.Settings.MonteCarlo.Seed = seed
			}
			_, err = app.MonteCarlo(cmd.Context())
			return err
		},
	}
	monteCarloCmd.Flags().StringVarP(&output, "output", "o", "", "CSV file for the simulated outcomes")
	monteCarloCmd.Flags().IntVarP(&draws, "draws", "n", 0, "Number of simulations")
	monteCarloCmd.Flags().IntVarP(&pick, "pick", "k", 0, "Tickers picked per simulation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 is random)")
	return monteCarloCmd
}

func buildReferenceCmd() *cobra.Command {
	referenceCmd := &cobra.Command{
		Use:   "reference FILE",
		Short: "Compare the streaming indicators with TA-Lib over one quote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			return app.Reference(args[0], length)
		},
	}
	referenceCmd.Flags().IntVarP(&length, "length", "l", 14, "Indicator length")
	return referenceCmd
}

func buildStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies and their default parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range cli.StrategyNames() {
				defaults, err := cli.StrategyDefaults(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", name, defaults)
			}
			return nil
		},
	}
}

func newApp() (*cli.App, error) {
	settings, err := cli.LoadSettings(configFile)
	if err != nil {
		return nil, err
	}
	applyFlags(&settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logConfig := zerolog.DefaultConfig()
	logConfig.Level = settings.Log.Level
	logConfig.JSON = settings.Log.JSON
	logConfig.Out = os.Stderr
	log, err := zerolog.New(logConfig)
	if err != nil {
		return nil, err
	}

	return &cli.App{
		Settings: settings,
		Log:      log,
		Out:      os.Stdout,
		Progress: progress,
	}, nil
}

func applyFlags(settings *cli.Settings) {
	if dataDir != "" {
		settings.DataDir = dataDir
	}
	if broker != "" {
		settings.Broker = broker
	}
	if strategy != "" {
		settings.Strategy.Name = strategy
	}
	if startDate != "" {
		settings.StartDate = startDate
	}
	if window != "" {
		settings.Window = window
	}
	if parallelism > 0 {
		settings.Parallelism = parallelism
	}
	if logLevel != "" {
		settings.Log.Level = logLevel
	}
}
