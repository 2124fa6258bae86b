package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mdlbot/bot"
	"mdlbot/scraper"
)

type config struct {
	Token    string
	BaseURL  string
	Timeout  time.Duration
	Headless bool
	Static   bool
	WordWrap int
}

func NewRootCmd() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "mdlbot",
		Short: "Telegram bot that searches MyDramaList",
		Long: "A Telegram bot (and terminal client) for searching MyDramaList by title.\n" +
			"Pages are fetched through a headless browser so client-rendered content is visible.",
		Example: `  # Run the bot
  MDLBOT_TOKEN=123:abc mdlbot

  # Search from the terminal
  mdlbot search Squid Game

  # Inspect what the extractor sees on a page
  mdlbot dump https://mydramalist.com/55435-squid-game`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runBot(c.Context(), cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("token", "", "Telegram bot token (env: MDLBOT_TOKEN)")
	pf.String("base-url", scraper.DefaultBaseURL, "Site base URL")
	pf.Duration("timeout", 30*time.Second, "Navigation timeout per fetch")
	pf.Bool("headless", true, "Run the browser headless")
	pf.Bool("static", false, "Fetch over plain HTTP instead of a headless browser")
	pf.IntP("word-wrap", "w", 80, "Word wrap width for terminal rendering")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return loadConfig(pf, cfg)
	}

	cmd.AddCommand(newSearchCmd(cfg), newDumpCmd(cfg))
	return cmd
}

// loadConfig merges flags, MDLBOT_* env vars and an optional config file,
// highest priority first: flag, env, file.
func loadConfig(flags *pflag.FlagSet, cfg *config) error {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix("MDLBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "mdlbot"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg.Token = v.GetString("token")
	cfg.BaseURL = v.GetString("base-url")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Headless = v.GetBool("headless")
	cfg.Static = v.GetBool("static")
	cfg.WordWrap = v.GetInt("word-wrap")
	return nil
}

func newLogger(level log.Level) *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(level)
	return logger
}

func (cfg *config) newScraper(logger *log.Logger) (*scraper.Scraper, error) {
	return scraper.New(scraper.Options{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		Headless: cfg.Headless,
		Static:   cfg.Static,
		Logger:   logger,
	})
}

func runBot(ctx context.Context, cfg *config) error {
	if cfg.Token == "" {
		return fmt.Errorf("no bot token; set MDLBOT_TOKEN or pass --token")
	}

	logger := newLogger(log.InfoLevel)

	scr, err := cfg.newScraper(logger)
	if err != nil {
		return err
	}
	defer func() { _ = scr.Close() }()

	b, err := bot.New(bot.Config{Token: cfg.Token, Scraper: scr, Logger: logger})
	if err != nil {
		return err
	}

	logger.Info("MyDramaList search bot starting", "base", cfg.BaseURL, "static", cfg.Static)
	b.Run(ctx)
	return nil
}
