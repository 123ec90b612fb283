package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkonrad/wikiharvest/internal/config"
	"github.com/mkonrad/wikiharvest/internal/extract"
	"github.com/mkonrad/wikiharvest/internal/fetcher"
	"github.com/mkonrad/wikiharvest/internal/resolver"
	"github.com/mkonrad/wikiharvest/internal/scraper"
	"github.com/mkonrad/wikiharvest/internal/storage"
)

var (
	cfgFile       string
	verbose       bool
	keywords      []string
	outputDir     string
	delay         string
	userAgent     string
	mongoURI      string
	respectRobots bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wikiharvest",
		Short: "WikiHarvest — Wikipedia keyword scraper",
		Long: `WikiHarvest fetches Wikipedia pages for a list of keywords and extracts
structured content: title, summary, infobox, sections, references, links,
and images.

Each keyword yields one JSON record file; every run with at least one
scraped article also writes a CSV summary table.`,
		SilenceUsage: true,
		RunE:         runScrape,
	}

	rootCmd.Flags().StringSliceVar(&keywords, "keywords", nil, "keywords to search for (repeatable or comma-separated)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "output directory for scraped data")
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&delay, "delay", "", "pause between keywords (e.g. 1s)")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "identifying User-Agent header")
	rootCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "also store records in MongoDB at this URI")
	rootCmd.Flags().BoolVar(&respectRobots, "respect-robots", true, "check robots.txt before fetching articles")
	_ = rootCmd.MarkFlagRequired("keywords")

	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cmd, cfg); err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	client, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create HTTP client: %w", err)
	}
	defer client.Close()

	store, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	var robots scraper.RobotsGate
	if cfg.Scraper.RespectRobotsTxt {
		robots = fetcher.NewRobotsChecker(client, cfg.HTTP.UserAgent, logger)
	}

	s := scraper.New(
		resolver.New(client, cfg.Scraper.SiteRoot, logger),
		extract.New(client, cfg.Scraper.SiteRoot, logger),
		store,
		robots,
		cfg.Scraper.Delay,
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting run",
		"keywords", keywords,
		"output", cfg.Storage.OutputDir,
		"delay", cfg.Scraper.Delay,
	)

	records, stats, err := s.Run(ctx, keywords)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger.Info("run finished",
		"keywords", stats.Keywords,
		"persisted", stats.Persisted,
		"skipped", stats.Skipped,
	)
	fmt.Printf("Scraped %d articles successfully!\n", len(records))
	return nil
}

// setupLogger creates a structured logger writing to both stdout and the
// configured log file.
func setupLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	var w io.Writer = os.Stdout
	closeLog := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeLog = func() { f.Close() }
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeLog, nil
}

// buildStore assembles the storage backends: always files, plus MongoDB when
// a URI is configured.
func buildStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	fileStore, err := storage.NewFileStore(cfg.Storage.OutputDir, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.MongoURI == "" {
		return fileStore, nil
	}

	mongoStore, err := storage.NewMongoStore(
		cfg.Storage.MongoURI,
		cfg.Storage.MongoDatabase,
		cfg.Storage.MongoCollection,
		logger,
	)
	if err != nil {
		return nil, err
	}
	return storage.NewMultiStore(logger, fileStore, mongoStore), nil
}

// applyCLIOverrides applies explicitly-set command-line flags to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Storage.OutputDir = outputDir
	}
	if flags.Changed("delay") {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid --delay %q: %w", delay, err)
		}
		cfg.Scraper.Delay = d
	}
	if flags.Changed("user-agent") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("mongo-uri") {
		cfg.Storage.MongoURI = mongoURI
	}
	if flags.Changed("respect-robots") {
		cfg.Scraper.RespectRobotsTxt = respectRobots
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikiharvest %s\n", config.Version)
		},
	}
}
