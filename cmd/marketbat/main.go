package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/marketbat/marketbat/internal/bot"
	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/logging"
	"github.com/marketbat/marketbat/internal/market"
	"github.com/marketbat/marketbat/internal/news"
	"github.com/marketbat/marketbat/internal/publish"
	"github.com/marketbat/marketbat/internal/realtime"
	"github.com/marketbat/marketbat/internal/scheduler"
	"github.com/marketbat/marketbat/internal/web"
)

func main() {
	// Check for subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "status":
			os.Exit(runStatus(os.Args[2:]))
		case "post":
			os.Exit(runPost(os.Args[2:]))
		}
	}

	configPath := flag.String("config", "marketbat.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logging: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}

	dbPath := filepath.Join(cfg.DataDir, "marketbat.db")
	posts, err := ledger.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dbPath).Msg("failed to open post ledger")
	}
	defer posts.Close()
	logger.Info().Str("path", dbPath).Msg("post ledger opened")

	creds := config.LoadCredentials()
	if !creds.HasXCredentials() {
		logger.Warn().Msg("X API credentials not set, posting will fail")
	}

	events := realtime.NewBroker()
	b := bot.New(logger, cfg, bot.Deps{
		Market: market.NewClient(logger, cfg.Market.BaseURL, creds.AlphaVantageKey,
			cfg.Market.MaxDataAgeDays, config.ParseTimeout(cfg.Market.RequestTimeout, 10*time.Second)),
		News: news.NewClient(logger, cfg.News.BaseURL, creds.NewsAPIKey,
			cfg.News.PageSize, config.ParseTimeout(cfg.News.RequestTimeout, 10*time.Second)),
		Publisher: publish.NewXClient(logger, creds),
		Posts:     posts,
		Events:    events,
	})

	sched := scheduler.NewScheduler(func(slot string) {
		b.RunSlot(context.Background(), slot)
	})
	slots := map[string]string{
		bot.SlotMorning: cfg.Schedule.Morning,
		bot.SlotEvening: cfg.Schedule.Evening,
		bot.SlotRevenue: cfg.Schedule.Revenue,
	}
	for name, expr := range slots {
		if err := sched.AddSlot(name, expr); err != nil {
			logger.Fatal().Err(err).Str("slot", name).Msg("invalid schedule")
		}
		logger.Info().Str("slot", name).Str("schedule", expr).Msg("slot registered")
	}
	sched.Start()

	srv := web.NewServer(
		logger,
		cfg.Listen,
		cfg.Monitoring.Dir,
		posts,
		events,
		func() *config.Config { return cfg },
		sched.Slots,
		func(slot string) {
			go b.RunSlot(context.Background(), slot)
		},
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	logger.Info().Str("listen", cfg.Listen).Msg("marketbat started")

	<-sigCh
	logger.Info().Msg("shutting down...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}

	logger.Info().Msg("marketbat stopped")
}
