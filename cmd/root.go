// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"vodgrep/internal/config"
	"vodgrep/internal/filter"
	"vodgrep/internal/httputil"
	"vodgrep/internal/render"
	"vodgrep/internal/twitch"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagFilter       string
	flagJSON         bool
	flagColor        string
	flagClientID     string
	flagClientSecret string
	flagDebug        bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// out renders results to stdout.
var out *render.Renderer

var rootCmd = &cobra.Command{
	Use:   "vodgrep",
	Short: "Search Twitch chat replays and clip titles",
	Long: `vodgrep walks a channel's stored broadcasts, replayed chat and clips on Twitch,
printing the HLS manifest of each broadcast and every comment or clip title
that matches a filter. Run without arguments in a terminal for interactive mode.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              interactiveRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFilter, "filter", "f", "", "Case-insensitive regular expression to match, e.g. 'hello|world' (default: everything)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output one JSON object per line")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "Color output: auto | always | never")
	rootCmd.PersistentFlags().StringVar(&flagClientID, "client-id", "", "Twitch application client id (default: $TWITCH_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&flagClientSecret, "client-secret", "", "Twitch application client secret (default: $TWITCH_CLIENT_SECRET)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(vodCmd)
	rootCmd.AddCommand(clipsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagClientID != "" {
		cfg.ClientID = flagClientID
	}
	if flagClientSecret != "" {
		cfg.ClientSecret = flagClientSecret
	}
	if flagColor != "" {
		cfg.Color = flagColor
	}
	if flagJSON {
		cfg.Format = "json"
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[vodgrep] ")
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		log.SetFlags(0)
	}

	out = render.New(os.Stdout, strings.ToLower(cfg.Format), cfg.Color)

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}

func sessionOptions() []twitch.Option {
	rc := httputil.DefaultRetryConfig
	rc.MaxRetries = cfg.MaxRetries

	return []twitch.Option{
		twitch.WithEndpoints(twitch.Endpoints{API: cfg.APIBase, ID: cfg.IDBase}),
		twitch.WithLegacyClientID(cfg.LegacyClientID),
		twitch.WithTimeout(cfg.Timeout()),
		twitch.WithRetry(rc),
		twitch.WithRateLimit(cfg.RequestsPerSecond),
		twitch.WithConcurrency(cfg.Concurrency),
	}
}

// authenticate exchanges the configured credentials for a session.
func authenticate(ctx context.Context) (*twitch.Session, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	s, err := twitch.Authenticate(ctx, cfg.ClientID, cfg.ClientSecret, sessionOptions()...)
	if err != nil {
		return nil, err
	}
	debugf("authenticated as client %s, token expires %s", s.ClientID(), s.Expiry().Format("2006-01-02 15:04"))
	return s, nil
}

func compileFilter() (filter.Filter, error) {
	f, err := filter.New(flagFilter)
	if err != nil {
		return nil, err
	}
	if f != filter.All {
		debugf("filter: %s", flagFilter)
	}
	return f, nil
}

// fatal reports whether err must stop the whole run rather than one item.
func fatal(err error) bool {
	var authErr *twitch.AuthError
	return errors.As(err, &authErr) || errors.Is(err, context.Canceled)
}

// eachArg runs fn for every argument, reporting local failures and carrying
// on. It stops at the first fatal error.
func eachArg(args []string, kind string, fn func(string) error) error {
	failed := 0
	for _, arg := range args {
		if err := fn(arg); err != nil {
			if fatal(err) {
				return err
			}
			log.Printf("%v", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d %s failed", failed, len(args), kind)
	}
	return nil
}
