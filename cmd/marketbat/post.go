package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marketbat/marketbat/internal/bot"
	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/logging"
	"github.com/marketbat/marketbat/internal/market"
	"github.com/marketbat/marketbat/internal/news"
	"github.com/marketbat/marketbat/internal/publish"
)

// runPost implements the "post" subcommand: run one posting slot
// immediately without starting the daemon.
func runPost(args []string) int {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	configPath := fs.String("config", "marketbat.yaml", "path to configuration file")
	slot := fs.String("slot", bot.SlotMorning, "posting slot to run (morning, evening, revenue)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	switch *slot {
	case bot.SlotMorning, bot.SlotEvening, bot.SlotRevenue:
	default:
		fmt.Fprintf(os.Stderr, "unknown slot %q\n", *slot)
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logging: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
		return 1
	}

	posts, err := ledger.NewSQLiteStore(filepath.Join(cfg.DataDir, "marketbat.db"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to open post ledger")
		return 1
	}
	defer posts.Close()

	creds := config.LoadCredentials()
	b := bot.New(logger, cfg, bot.Deps{
		Market: market.NewClient(logger, cfg.Market.BaseURL, creds.AlphaVantageKey,
			cfg.Market.MaxDataAgeDays, config.ParseTimeout(cfg.Market.RequestTimeout, 10*time.Second)),
		News: news.NewClient(logger, cfg.News.BaseURL, creds.NewsAPIKey,
			cfg.News.PageSize, config.ParseTimeout(cfg.News.RequestTimeout, 10*time.Second)),
		Publisher: publish.NewXClient(logger, creds),
		Posts:     posts,
	})

	b.RunSlot(context.Background(), *slot)
	return 0
}
