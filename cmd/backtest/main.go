package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/harmonic-backtest/internal/backtest"
	"github.com/ducminhle1904/harmonic-backtest/internal/config"
	"github.com/ducminhle1904/harmonic-backtest/internal/exchange/bybit"
	"github.com/ducminhle1904/harmonic-backtest/internal/monitoring"
	"github.com/ducminhle1904/harmonic-backtest/internal/storage"
	"github.com/ducminhle1904/harmonic-backtest/pkg/data"
	"github.com/ducminhle1904/harmonic-backtest/pkg/reporting"
	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

const (
	AppName    = "Harmonic Backtest"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewBacktestFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	if err := ValidateBacktestFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	loadEnvironment(*flags.EnvFile)
	env := config.Load()
	if env.Debug() {
		log.Printf("🔧 %s environment, data root %s, results dir %s",
			env.Environment, env.Data.Root, env.Results.Dir)
	}
	startMetricsServer(env)

	btCfg, err := buildConfig(flags)
	if err != nil {
		monitoring.RecordError("config")
		log.Fatalf("❌ Configuration error: %v", err)
	}

	engine, err := backtest.NewEngine(btCfg)
	if err != nil {
		monitoring.RecordError("config")
		log.Fatalf("❌ Configuration error: %v", err)
	}

	lower, higher, err := loadBars(flags, btCfg, env)
	if err != nil {
		monitoring.RecordError("data")
		log.Fatalf("❌ Data error: %v", err)
	}

	log.Printf("🚀 Running backtest for %s (%s structure, %s execution, %d bars)",
		btCfg.Symbol, btCfg.HigherTimeframe, btCfg.LowerTimeframe, len(lower))

	started := time.Now()
	result, err := engine.Run(lower, higher)
	if err != nil {
		monitoring.RecordBacktest(btCfg.Symbol, "error", time.Since(started))
		log.Fatalf("❌ Backtest failed: %v", err)
	}
	monitoring.RecordBacktest(btCfg.Symbol, "ok", time.Since(started))
	for _, tr := range result.Trades {
		monitoring.RecordTrade(btCfg.Symbol, string(tr.ExitReason))
	}

	outputResult(result, flags)

	if *flags.SaveResult {
		store, err := storage.NewResultsStore(env.Results.Dir)
		if err != nil {
			monitoring.RecordError("storage")
			log.Fatalf("❌ Storage error: %v", err)
		}
		id, err := store.Save(result)
		if err != nil {
			monitoring.RecordError("storage")
			log.Fatalf("❌ Storage error: %v", err)
		}
		log.Printf("💾 Saved result %s", id)
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

func buildConfig(flags *BacktestFlags) (backtest.Config, error) {
	cfg := backtest.DefaultConfig(*flags.Symbol)
	cfg.HigherTimeframe = *flags.HigherTF
	cfg.LowerTimeframe = *flags.LowerTF
	cfg.FibTolerance = *flags.FibTolerance
	cfg.PatternTolerance = *flags.PatternTolerance
	cfg.StopMultiplier = *flags.StopMultiplier
	cfg.TargetMultiplier = *flags.TargetMultiplier
	cfg.MaxHoldingBars = *flags.MaxHoldingBars
	cfg.VolumeMAPeriod = *flags.VolumeMAPeriod
	cfg.RVOLThreshold = *flags.RVOLThreshold

	var err error
	if cfg.StartDate, err = parseDate(*flags.StartDate); err != nil {
		return cfg, fmt.Errorf("invalid start date: %w", err)
	}
	if cfg.EndDate, err = parseDate(*flags.EndDate); err != nil {
		return cfg, fmt.Errorf("invalid end date: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadBars(flags *BacktestFlags, cfg backtest.Config, env *config.Config) (lower, higher []types.Bar, err error) {
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

	provider := data.NewCachedProvider(data.NewCSVProvider())
	if lower, err = loadCSV(provider, *flags.LowerData, cfg); err != nil {
		return nil, nil, err
	}
	if higher, err = loadCSV(provider, *flags.HigherData, cfg); err != nil {
		return nil, nil, err
	}
	return lower, higher, nil
}

func loadCSV(provider data.Provider, path string, cfg backtest.Config) ([]types.Bar, error) {
	raw, err := provider.LoadBars(path)
	if err != nil {
		return nil, err
	}
	bars, err := data.Prepare(raw)
	if err != nil {
		return nil, err
	}
	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() {
		bars = data.SliceRange(bars, cfg.StartDate, cfg.EndDate)
	}
	return bars, nil
}

func outputResult(result *backtest.Result, flags *BacktestFlags) {
	reporter := reporting.NewConsoleReporter()

	switch *flags.OutputFormat {
	case "json":
		path := *flags.OutputFile
		if path == "" {
			path = reporting.DefaultResultPath(result.Config.Symbol, result.Config.LowerTimeframe)
		}
		if err := reporting.WriteJSON(result, path); err != nil {
			log.Fatalf("❌ Failed to write JSON: %v", err)
		}
		log.Printf("💾 Wrote %s", path)
	case "excel":
		path := *flags.OutputFile
		if path == "" {
			path = reporting.DefaultWorkbookPath(result.Config.Symbol, result.Config.LowerTimeframe)
		}
		if err := reporting.WriteTradesXLSX(result, path); err != nil {
			log.Fatalf("❌ Failed to write workbook: %v", err)
		}
		log.Printf("💾 Wrote %s", path)
	default:
		reporter.PrintResult(result)
		if *flags.ShowTrades {
			reporter.PrintTrades(result)
		}
	}
}
