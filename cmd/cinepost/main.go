package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/cinepost/internal/bot"
	"github.com/Nomadcxx/cinepost/internal/cache"
	"github.com/Nomadcxx/cinepost/internal/config"
	"github.com/Nomadcxx/cinepost/internal/health"
	"github.com/Nomadcxx/cinepost/internal/logging"
	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/session"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cinepost",
		Short: "Telegram bot that turns movie files into rich channel posts",
		Long: `Cinepost receives movie files on Telegram, parses the title out of
release-style filenames, looks the movie up on TMDB, and posts the
poster, details, and the file itself to a channel.

Features:
  - Filename parsing that strips release junk (resolution, codecs, groups)
  - Interactive title confirmation with inline keyboards
  - TMDB search with poster, rating, runtime, and genres
  - Automatic channel posting with a formatted caption`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long: `Start the bot and process Telegram updates until interrupted.

Requires a config file (see "cinepost setup" or "cinepost config init")
or the CINEPOST_TELEGRAM_TOKEN and CINEPOST_TMDB_API_KEY environment
variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

func runBot() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logging.Config(cfg.Logging)
	if verbose {
		logCfg.Level = "debug"
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer log.Close()

	log.Info("main", "starting cinepost", logging.F("version", version))

	parser, err := buildParser(cfg, log)
	if err != nil {
		return err
	}

	var posters *cache.PosterCache
	if cfg.Cache.Enabled {
		if cfg.Cache.Path != "" {
			posters, err = cache.OpenPath(cfg.Cache.Path, cfg.CacheTTL(), cfg.Cache.MaxEntries)
		} else {
			posters, err = cache.Open(cfg.CacheTTL(), cfg.Cache.MaxEntries)
		}
		if err != nil {
			return fmt.Errorf("opening poster cache: %w", err)
		}
		defer posters.Close()
	}

	tmdbClient := tmdb.NewClient(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		Timeout:      time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second,
		MaxRetries:   cfg.TMDB.MaxRetries,
		RateDelay:    time.Duration(cfg.TMDB.RateLimitMS) * time.Millisecond,
	})

	store := session.NewStore(cfg.SessionTimeout(), log, nil)
	defer store.Close()

	b, err := bot.New(cfg, tmdbClient, store, posters, parser, log)
	if err != nil {
		return err
	}
	// The expiry notice needs the bot, which needs the store, so the
	// callback is wired after both exist.
	store.SetOnExpire(b.NotifyExpired)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Parser.RulesFile != "" {
		watcher, err := config.WatchRules(cfg.Parser.RulesFile, log, func() {
			p, err := buildParser(cfg, log)
			if err != nil {
				log.Error("main", "failed to reload parser rules", err)
				return
			}
			b.SetParser(p)
		})
		if err != nil {
			log.Warn("main", "could not watch rules file", logging.F("path", cfg.Parser.RulesFile))
		} else {
			defer watcher.Close()
		}
	}

	if cfg.Health.Enabled {
		hs := health.NewServer(cfg.Health.Addr, b, log)
		hs.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			hs.Stop(shutdownCtx)
		}()
	}

	return b.Run(ctx)
}

// buildParser compiles the filename parser with any extra rules from the
// configured rules file.
func buildParser(cfg *config.Config, log *logging.Logger) (*naming.Parser, error) {
	if cfg.Parser.RulesFile == "" {
		return naming.DefaultParser(), nil
	}

	extra, err := naming.LoadRulesFile(cfg.Parser.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading parser rules: %w", err)
	}
	parser, err := naming.NewParser(extra...)
	if err != nil {
		return nil, fmt.Errorf("compiling parser rules: %w", err)
	}
	if len(extra) > 0 {
		log.Info("main", "loaded extra parser rules",
			logging.F("count", len(extra)),
			logging.F("path", cfg.Parser.RulesFile))
	}
	return parser, nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <filename>...",
		Short: "Test the filename parser",
		Long: `Run the filename parser on one or more filenames and print what
would be searched on TMDB.

Examples:
  cinepost parse Movie.Name.2024.1080p.WEB-DL.mkv
  cinepost parse "Movie (2022) Hindi 720p.avi"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.DefaultConfig()
			}
			parser, err := buildParser(cfg, logging.Nop())
			if err != nil {
				return err
			}

			for _, filename := range args {
				guess := parser.Parse(filename)
				year := "-"
				if guess.Year > 0 {
					year = fmt.Sprintf("%d", guess.Year)
				}
				fmt.Printf("%s\n  title: %s\n  year:  %s\n", filename, guess.Title, year)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cinepost %s\n", strings.TrimSpace(version))
		},
	}
}
