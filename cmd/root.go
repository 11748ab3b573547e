// ABOUTME: Root command for the nextstep CLI
// ABOUTME: Handles global flags, configuration and launching the TUI

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/config"
	"github.com/ParthhMahajann/Nextstep-AI/internal/credstore"
	"github.com/ParthhMahajann/Nextstep-AI/internal/feed"
	"github.com/ParthhMahajann/Nextstep-AI/internal/logger"
	"github.com/ParthhMahajann/Nextstep-AI/internal/session"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
	noPersist  bool
)

// rootCmd is the base command. Without a subcommand it starts the TUI.
var rootCmd = &cobra.Command{
	Use:   "nextstep",
	Short: "Job discovery from your terminal",
	Long: `nextstep is a terminal client for the NextStep job discovery service.

Run it without a subcommand to swipe through recommended jobs in the
interactive TUI, or use the subcommands from scripts.

Environment Variables:
  NEXTSTEP_API_URL          Backend API URL (default: http://localhost:8000/api)
  NEXTSTEP_CONFIG_DIR       Where the session and recent resumes are kept
  NEXTSTEP_TIMEOUT          Request timeout in seconds (default: 30)
  NEXTSTEP_RATE_LIMIT       Client side requests per second (default: 10)
  NEXTSTEP_SWIPE_THRESHOLD  Drag distance that commits a swipe (default: 100)
  NEXTSTEP_MAX_RESUME_MB    Largest resume upload (default: 5)
  LOG_LEVEL, LOG_FORMAT     debug|info|warn|error and text|json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == cmd.Root() {
			return nil // the TUI logs to a file
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runTUI(ctx)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides NEXTSTEP_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides NEXTSTEP_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "Keep the session in memory only")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	cfg, err := loadConfig()
	if err != nil {
		if apiURL != "" {
			return apiURL
		}
		return config.DefaultAPIURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	return cfg, nil
}

// env is what every command works against
type env struct {
	cfg     *config.Config
	creds   credstore.Store
	client  *client.Client
	session *session.Store
	jobs    *feed.Store
}

func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var creds credstore.Store = credstore.NewFileStore(cfg.ConfigDir)
	if noPersist || cfg.ConfigDir == "" {
		creds = credstore.NewMemoryStore(credstore.Credentials{})
	}

	c := client.New(cfg.APIURL, creds,
		client.WithTimeout(cfg.Timeout),
		client.WithRateLimit(cfg.RateLimit, max(1, int(cfg.RateLimit))),
	)

	return &env{
		cfg:     cfg,
		creds:   creds,
		client:  c,
		session: session.New(c, creds),
		jobs:    feed.New(c),
	}, nil
}

// requireLogin fails fast when no session is stored. Expired tokens are
// left to the gateway's refresh.
func (e *env) requireLogin() error {
	creds, err := e.creds.Load()
	if err != nil {
		return errors.Wrap(err, "failed to read stored session")
	}
	if !creds.IsAuthenticated || !creds.HasAccess() {
		return errors.WithHint(session.ErrNotAuthenticated, "run `nextstep login` first")
	}
	return nil
}

func runTUI(ctx context.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}

	logFile, err := logger.OpenFile(e.cfg.ConfigDir)
	if err != nil {
		return errors.Wrap(err, "failed to open debug log")
	}
	defer logFile.Close()
	logger.Init(logFile, e.cfg.LogLevel, e.cfg.LogFormat)

	return tui.Run(ctx, e.client, e.session, tui.Options{
		SwipeThreshold: e.cfg.SwipeThreshold,
		MaxResumeBytes: e.cfg.MaxResumeBytes,
		ConfigDir:      e.cfg.ConfigDir,
	})
}

// runWithSignals wires a cancellable context into a runX function and
// exits with its code
func runWithSignals(run func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Stdout)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// printError writes the error and any hints
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", client.UserMessage(err))
}

func writeJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func matchText(percent float64) string {
	if percent < 0 {
		return "new"
	}
	return fmt.Sprintf("%.0f%%", percent)
}
