package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alejandrodnm/polyweather/config"
	"github.com/alejandrodnm/polyweather/internal/adapters/notify"
	"github.com/alejandrodnm/polyweather/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyweather/internal/adapters/storage"
	"github.com/alejandrodnm/polyweather/internal/adapters/tomorrowio"
	"github.com/alejandrodnm/polyweather/internal/adapters/visualcrossing"
	"github.com/alejandrodnm/polyweather/internal/backtest"
	"github.com/alejandrodnm/polyweather/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	city := flag.String("city", "Seoul", "city name")
	targetDate := flag.String("target-date", "", "target end date (YYYY-MM-DD)")
	lookback := flag.Int("lookback", 0, "number of days to look back")
	v2 := flag.Bool("v2", false, "extended selection: unconstrained YES + best NO")
	predict := flag.Bool("predict", false, "forward-looking prediction mode (forecast + live prices)")
	schedule := flag.String("schedule", "", "cron expression to re-run predictions (requires -predict)")
	marketID := flag.String("market", "", "inspect a single market by Gamma id and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	ledger := flag.Bool("ledger", false, "print full row-per-contract ledger")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *marketID != "" {
		inspectMarket(cfg, *marketID)
		return
	}

	if *targetDate == "" {
		slog.Error("missing required flag -target-date")
		os.Exit(1)
	}

	slog.Info("polyweather starting",
		"config", *configPath,
		"city", *city,
		"target_date", *targetDate,
		"lookback", *lookback,
		"v2", *v2,
		"predict", *predict,
	)

	pmClient := polymarket.NewClient(cfg.API.GammaBase, cfg.API.CLOBBase)
	vcClient := visualcrossing.NewClient(cfg.API.VisualCrossingBase, cfg.API.VisualCrossingKey)
	tioClient := tomorrowio.NewClient(cfg.API.TomorrowIOBase, cfg.API.TomorrowIOKey)

	var store *storage.SQLiteStorage
	if cfg.Storage.DSN != "" {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*ledger)

	engCfg := backtest.DefaultConfig()
	engCfg.AllocationPerTrade = cfg.Backtest.AllocationPerTrade
	engCfg.OutputDir = cfg.Backtest.OutputDir
	engCfg.V2 = *v2
	engCfg.Prediction = *predict

	var engine *backtest.Engine
	if store != nil {
		engine = backtest.New(engCfg, pmClient, pmClient, vcClient, tioClient, store, notifier)
	} else {
		engine = backtest.New(engCfg, pmClient, pmClient, vcClient, tioClient, nil, notifier)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *schedule != "" {
		if !*predict {
			slog.Error("-schedule requires -predict")
			os.Exit(1)
		}
		runScheduled(ctx, engine, *schedule, *city, *targetDate, *lookback)
		return
	}

	result, err := engine.RunBacktest(ctx, *city, *targetDate, *lookback)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}
	if !result.Success {
		slog.Error("backtest incomplete, partial results returned", "err", result.Error)
		os.Exit(1)
	}
}

// inspectMarket imprime un mercado concreto de Gamma. Útil para comprobar a
// mano cómo se parsea un contrato antes de meterlo en un backtest.
func inspectMarket(cfg *config.Config, id string) {
	client := polymarket.NewClient(cfg.API.GammaBase, cfg.API.CLOBBase)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := client.GetMarketByID(ctx, id)
	if err != nil {
		slog.Error("failed to fetch market", "id", id, "err", err)
		os.Exit(1)
	}

	threshold := domain.ParseThreshold(m.Question)
	fmt.Printf("Question:   %s\n", m.Question)
	fmt.Printf("Slug:       %s\n", m.Slug)
	fmt.Printf("YES price:  %.3f\n", m.YesPrice)
	fmt.Printf("Liquidity:  %.2f\n", m.Liquidity)
	fmt.Printf("Closed:     %v\n", m.Closed)
	fmt.Printf("End date:   %s\n", m.EndDate.Format(time.RFC3339))
	fmt.Printf("YES token:  %s\n", m.YesTokenID())
	if threshold.Valid {
		fmt.Printf("Threshold:  %.1f°F (%s)\n", threshold.Value, domain.ClassifyQualifier(m.Question))
	} else {
		fmt.Println("Threshold:  not parseable")
	}
}

// runScheduled re-ejecuta la predicción según la expresión cron hasta que
// el contexto se cancele. Útil para capturar el pronóstico de cada mañana.
func runScheduled(ctx context.Context, engine *backtest.Engine, spec, city, targetDate string, lookback int) {
	c := cron.New()

	run := func() {
		result, err := engine.RunBacktest(ctx, city, targetDate, lookback)
		if err != nil {
			slog.Error("scheduled prediction failed", "err", err)
			return
		}
		if !result.Success {
			slog.Warn("scheduled prediction incomplete", "err", result.Error)
		}
	}

	if _, err := c.AddFunc(spec, run); err != nil {
		slog.Error("invalid cron expression", "schedule", spec, "err", err)
		os.Exit(1)
	}

	slog.Info("prediction scheduler starting", "schedule", spec)
	run() // primera ejecución inmediata
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("prediction scheduler stopped")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
