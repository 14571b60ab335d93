package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"macross/internal/broker"
	"macross/internal/broker/alpacagw"
	"macross/internal/broker/ibgw"
	"macross/internal/config"
	"macross/internal/engine"
	"macross/internal/logging"
	"macross/internal/market"
	"macross/internal/recorder"
	"macross/internal/risk"
	"macross/internal/session"
	"macross/internal/state"
	"macross/internal/strategy"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	runID := engine.NewRunID()
	journal, err := engine.NewJournal(cfg.Paths.Journal, runID)
	if err != nil {
		logger.Fatal().Err(err).Msg("open journal")
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("close journal")
		}
	}()

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Paths.SQLite != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(cfg.Paths.SQLite)
		if err != nil {
			logger.Warn().Err(err).Msg("sqlite recorder unavailable, recording disabled")
		} else {
			rec = sqliteRec
			defer sqliteRec.Close()
			logger.Info().Str("path", cfg.Paths.SQLite).Msg("sqlite recorder opened")
		}
	}

	store := state.NewStore()
	if err := store.Load(cfg.Paths.Checkpoint); err == nil {
		logger.Info().Str("path", cfg.Paths.Checkpoint).Msg("checkpoint loaded")
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("path", cfg.Paths.Checkpoint).Msg("checkpoint unreadable, starting flat")
	}

	contract := broker.ContractSpec{
		Symbol:        cfg.Contract.Symbol,
		SecType:       cfg.Contract.SecType,
		Exchange:      cfg.Contract.Exchange,
		Currency:      cfg.Contract.Currency,
		ContractMonth: cfg.Contract.ContractMonth,
	}

	var gateway broker.Gateway
	switch cfg.Gateway.Backend {
	case "alpaca":
		gateway = alpacagw.New(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, cfg.Alpaca.Feed, logger)
	default:
		gateway = ibgw.New(cfg.Gateway.Host, cfg.Gateway.Port, int64(cfg.Gateway.ClientID), logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	if err := broker.ConnectWithRetry(ctx, gateway, cfg.Gateway.ConnectAttempts, cfg.Gateway.ConnectDelay, logger); err != nil {
		logger.Fatal().Err(err).Msg("gateway unreachable: ensure TWS or IB Gateway is running")
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Warn().Err(err).Msg("gateway close")
		}
	}()

	bars, err := gateway.HistoricalBars(ctx, contract, cfg.Strategy.Lookback, cfg.Strategy.BarSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("historical data fetch failed")
	}

	sess, err := session.New(cfg.Session.Open, cfg.Session.Close, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("session window")
	}
	sess.Start()
	defer sess.Stop()

	eng := engine.New(cfg, contract, strategy.Crossover{OrderSize: cfg.Strategy.OrderSize}, risk.Gate{}, gateway, store, journal, rec, sess, logger)
	eng.Seed(bars)

	go engine.ReconcileLoop(ctx, gateway, store, contract, cfg.ReconcileInterval, logger)

	logger.Info().
		Str("run_id", runID).
		Str("backend", cfg.Gateway.Backend).
		Str("symbol", cfg.Contract.Symbol).
		Str("contract_month", cfg.Contract.ContractMonth).
		Int("short_window", cfg.Strategy.ShortWindow).
		Int("long_window", cfg.Strategy.LongWindow).
		Msg("bot started")

	if err := gateway.StreamBars(ctx, contract, func(bar market.Bar) {
		eng.OnBar(ctx, bar)
	}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("bar stream stopped")
	}

	if err := store.Save(cfg.Paths.Checkpoint); err != nil {
		logger.Warn().Err(err).Msg("save checkpoint")
	}
	logger.Info().Msg("bot shutdown complete")
}
