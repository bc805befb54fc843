// Package main provides the CLI entrypoint for nomes.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/config"
	"github.com/verte-zerg/nomes/internal/logging"
	"github.com/verte-zerg/nomes/internal/model"
	"github.com/verte-zerg/nomes/internal/rankui"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultToastDuration = 5 * time.Second
	defaultServeAddr     = "127.0.0.1:8080"
)

var (
	apiURL     string
	apiTimeout time.Duration
	verbose    bool

	uiToastDuration time.Duration
	uiColor         bool
	uiColorSet      bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nomes",
		Short:         "Ranking of given names in Brazil",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runViewCmd,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", api.DefaultBaseURL, "statistics API base URL")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", defaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug messages")

	rootCmd.Flags().DurationVar(&uiToastDuration, "toast-duration", defaultToastDuration, "how long notifications stay visible")
	rootCmd.PersistentFlags().BoolVar(&uiColor, "color", true, "color the chart bars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newRankingCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

// resolveConfig merges the config file, environment and flags, in that
// order of increasing priority.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "api-url", &apiURL, fileCfg.API.BaseURL)
	applyDurationConfig(cmd, "timeout", &apiTimeout, fileCfg.API.Timeout)
	applyDurationConfig(cmd, "toast-duration", &uiToastDuration, fileCfg.UI.ToastDuration)
	applyBoolConfig(cmd, "color", &uiColor, fileCfg.UI.Color)
	uiColorSet = cmd.Flags().Changed("color") || fileCfg.UI.Color != nil
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Serve.DB)

	cfg := model.Config{
		APIBaseURL:    strings.TrimSpace(apiURL),
		Timeout:       apiTimeout,
		ToastDuration: uiToastDuration,
		Verbose:       verbose,
		ForceColor:    uiColor,
		LogPath:       config.DefaultLogPath(),
		DatasetPath:   dbPath,
		ServeAddress:  serveAddr,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("--api-url must be an http(s) URL, got %q", cfg.APIBaseURL)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.ToastDuration <= 0 {
		return fmt.Errorf("--toast-duration must be > 0")
	}
	return nil
}

func newLogger(cfg model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogPath, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func newClient(cfg model.Config, logger *zap.Logger) *api.Client {
	return api.NewClient(
		api.WithBaseURL(cfg.APIBaseURL),
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client := newClient(cfg, logger)
	logger.Info("starting view", zap.String("api", client.BaseURL()))

	view := rankui.NewModel(client, cfg, logger)
	defer view.Close()
	program := tea.NewProgram(view, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# nomes configuration
# Uncomment a value to enable it. %s overrides api.base-url; CLI flags override everything.

[api]
# base-url = %q
# timeout = %q

[ui]
# toast-duration = %q   # How long notifications stay visible
# color = true          # Color the chart bars

[serve]
# addr = %q
# db = %q
`,
		config.EnvAPIURL,
		api.DefaultBaseURL,
		defaultTimeout.String(),
		defaultToastDuration.String(),
		defaultServeAddr,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
