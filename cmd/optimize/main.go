package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
	"github.com/ducminhle1904/harmonic-backtest/internal/config"
	"github.com/ducminhle1904/harmonic-backtest/internal/exchange/bybit"
	"github.com/ducminhle1904/harmonic-backtest/internal/monitoring"
	"github.com/ducminhle1904/harmonic-backtest/internal/storage"
	"github.com/ducminhle1904/harmonic-backtest/pkg/data"
	"github.com/ducminhle1904/harmonic-backtest/pkg/optimization"
	"github.com/ducminhle1904/harmonic-backtest/pkg/reporting"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

const (
	AppName    = "Harmonic Walk-Forward Optimizer"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewOptimizeFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	if err := ValidateOptimizeFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	loadEnvironment(*flags.EnvFile)
	env := config.Load()
	if env.Debug() {
		log.Printf("🔧 %s environment, data root %s, results dir %s",
			env.Environment, env.Data.Root, env.Results.Dir)
	}
	startMetricsServer(env)

	wfCfg, err := buildConfig(flags)
	if err != nil {
		monitoring.RecordError("config")
		log.Fatalf("❌ Configuration error: %v", err)
	}

	optimizer, err := optimization.NewOptimizer(wfCfg)
	if err != nil {
		monitoring.RecordError("config")
		log.Fatalf("❌ Configuration error: %v", err)
	}

	lower, higher, err := loadBars(flags, wfCfg.Backtest, env)
	if err != nil {
		monitoring.RecordError("data")
		log.Fatalf("❌ Data error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("🚀 Walk-forward optimization for %s (%dd train / %dd test / %dd step, objective %s)",
		wfCfg.Backtest.Symbol, *flags.TrainDays, *flags.TestDays, *flags.StepDays, wfCfg.Objective)

	result, err := optimizer.Run(ctx, lower, higher)
	if err != nil {
		monitoring.RecordError("optimization")
		log.Fatalf("❌ Optimization failed: %v", err)
	}

	for range result.Windows {
		monitoring.RecordWindow("ok")
	}
	for range result.Failed {
		monitoring.RecordWindow("failed")
	}

	reporting.NewConsoleReporter().PrintWalkForward(result)

	if *flags.OutputFile != "" {
		if err := reporting.WriteJSON(result, *flags.OutputFile); err != nil {
			log.Fatalf("❌ Failed to write JSON: %v", err)
		}
		log.Printf("💾 Wrote %s", *flags.OutputFile)
	}

	if *flags.SaveResult {
		store, err := storage.NewResultsStore(env.Results.Dir)
		if err != nil {
			monitoring.RecordError("storage")
			log.Fatalf("❌ Storage error: %v", err)
		}
		id, err := store.SaveOptimization(wfCfg, result)
		if err != nil {
			monitoring.RecordError("storage")
			log.Fatalf("❌ Storage error: %v", err)
		}
		log.Printf("💾 Saved run %s", id)
	}
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
	}
}

func startMetricsServer(env *config.Config) {
	if !env.Monitoring.Enabled {
		return
	}
	go func() {
		log.Printf("📊 Starting Prometheus server on port %d", env.Monitoring.PrometheusPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", env.Monitoring.PrometheusPort), monitoring.NewMetricsHandler()); err != nil {
			log.Printf("⚠️  Prometheus server error: %v", err)
		}
	}()
}

func buildConfig(flags *OptimizeFlags) (optimization.Config, error) {
	bt := backtest.DefaultConfig(*flags.Symbol)
	bt.HigherTimeframe = *flags.HigherTF
	bt.LowerTimeframe = *flags.LowerTF

	var err error
	if bt.StartDate, err = parseDate(*flags.StartDate); err != nil {
		return optimization.Config{}, fmt.Errorf("invalid start date: %w", err)
	}
	if bt.EndDate, err = parseDate(*flags.EndDate); err != nil {
		return optimization.Config{}, fmt.Errorf("invalid end date: %w", err)
	}

	params, err := parseGrid(*flags.Grid)
	if err != nil {
		return optimization.Config{}, err
	}

	return optimization.Config{
		Backtest:      bt,
		Parameters:    params,
		TrainDuration: time.Duration(*flags.TrainDays) * 24 * time.Hour,
		TestDuration:  time.Duration(*flags.TestDays) * 24 * time.Hour,
		StepDuration:  time.Duration(*flags.StepDays) * 24 * time.Hour,
		Objective:     *flags.Objective,
		Workers:       *flags.Workers,
	}, nil
}

func loadBars(flags *OptimizeFlags, cfg backtest.Config, env *config.Config) (lower, higher []types.Bar, err error) {
	if *flags.Fetch {
		client := bybit.NewClient(bybit.Config{
			APIKey:    env.Exchange.APIKey,
			APISecret: env.Exchange.Secret,
			Testnet:   env.Exchange.Testnet,
		})
		provider := data.NewBybitProvider(client, env.Data.Category)

		ctx := context.Background()
		lower, err = provider.FetchBars(ctx, cfg.Symbol, cfg.LowerTimeframe, cfg.StartDate, cfg.EndDate)
		if err != nil {
			return nil, nil, err
		}
		higher, err = provider.FetchBars(ctx, cfg.Symbol, cfg.HigherTimeframe, cfg.StartDate, cfg.EndDate)
		if err != nil {
			return nil, nil, err
		}
		return lower, higher, nil
	}

	csv := data.NewCachedProvider(data.NewCSVProvider())
	if lower, err = loadCSV(csv, *flags.LowerData); err != nil {
		return nil, nil, err
	}
	if higher, err = loadCSV(csv, *flags.HigherData); err != nil {
		return nil, nil, err
	}
	return lower, higher, nil
}

func loadCSV(provider data.Provider, path string) ([]types.Bar, error) {
	raw, err := provider.LoadBars(path)
	if err != nil {
		return nil, err
	}
	return data.Prepare(raw)
}
