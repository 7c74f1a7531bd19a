package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DihyahAdib/ORBS-Trading-bot/internal/clock"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/config"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/detector"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/marketdata"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/notifier"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/recorder"
	"github.com/DihyahAdib/ORBS-Trading-bot/internal/scheduler"
)

func main() {
	// .env is optional; real env vars always win
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("ORB watcher starting",
		zap.Strings("symbols", cfg.Symbols),
		zap.Int("orb_minutes", cfg.ORB.Minutes),
	)

	// Market clock
	clk, err := clock.New(cfg.Market.Timezone, cfg.Market.Open, cfg.Market.Close,
		cfg.Market.PremarketStart, cfg.Market.AfterhoursEnd)
	if err != nil {
		log.Fatal("init market clock", zap.Error(err))
	}

	// Data fetcher
	var fetcher marketdata.Fetcher
	if os.Getenv("USE_MOCK_DATA") == "true" {
		fetcher = &marketdata.MockFetcher{Price: 100}
	} else {
		fetcher = marketdata.NewYahooFetcher(cfg.Proxy, clk.Location())
	}
	log.Info("data source selected", zap.String("fetcher", fetcher.Name()))

	// Notification sinks
	var sinks []notifier.Sink
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		sinks = append(sinks, notifier.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log.Named("telegram")))
	}
	if cfg.Discord.WebhookURL != "" {
		sinks = append(sinks, notifier.NewDiscordSink(cfg.Discord.WebhookURL, cfg.Discord.RoleID))
	}
	if cfg.Email.SMTPServer != "" && cfg.Email.From != "" && cfg.Email.To != "" {
		sinks = append(sinks, notifier.NewEmailSink(cfg.Email.SMTPServer, cfg.Email.SMTPPort,
			cfg.Email.From, cfg.Email.Password, cfg.Email.To))
	}
	if len(sinks) == 0 {
		log.Warn("no notification sinks configured, alerts will only be logged")
	}
	dispatch := notifier.NewDispatcher(log.Named("dispatcher"), sinks...)

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log.Named("recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics endpoint
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info("metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	// Scheduler
	det := detector.New(cfg.Alerts.SignalCommit, log.Named("detector"))
	sched := scheduler.New(cfg, clk, fetcher, det, dispatch, rec, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("start scheduler", zap.Error(err))
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping")
		sched.RequestStop()
		<-sched.Done()
	case <-sched.Done():
		log.Error("scheduler stopped on its own, shutting down")
	}

	log.Info("ORB watcher stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
