// Package main provides the CLI entrypoint for dmt.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/config"
	"github.com/verte-zerg/dmt/internal/store"
)

var (
	configPath string
	envFile    string
	dbURL      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dmt",
		Short:         "DMT reading fluency practice server and tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dmt/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database path or postgres:// url")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPracticeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings resolves settings from the dotenv file, the config file and
// the environment. The --db flag wins over all of them.
func loadSettings(cmd *cobra.Command) (config.Settings, config.FileConfig, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Settings{}, config.FileConfig{}, err
	}
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Settings{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := config.Resolve(fileCfg, os.Getenv)
	if err != nil {
		return config.Settings{}, config.FileConfig{}, fmt.Errorf("failed to resolve settings: %w", err)
	}
	applyStringFlag(cmd, "db", &settings.DatabaseURL, dbURL)
	return settings, fileCfg, nil
}

func openStore(settings config.Settings) (*store.Store, error) {
	if err := ensureDBDir(settings.DatabaseURL); err != nil {
		return nil, err
	}
	st, err := store.Open(settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func ensureDBDir(url string) error {
	if strings.Contains(url, "://") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(url), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
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
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

// applyStringFlag overrides target with a flag the user set explicitly.
func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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
	return fmt.Sprintf(`# dmt configuration
# Uncomment a value to enable it. Environment variables override the file;
# CLI flags override both.

[server]
# addr = %q                  # Listen address (env %s)
# cors-origin = %q             # Allowed browser origin

[database]
# url = %q   # SQLite path or postgres:// url (env %s)

[auth]
# secret-key = ""               # Token signing key (env %s)
# token-ttl-minutes = %d      # Token lifetime (env %s)

[session]
# default-duration = %d         # Session budget in seconds
# stale-after-minutes = %d       # Grace before unfinished sessions are swept
# sweep-interval-minutes = %d     # How often the sweeper runs

[speech]
# deepgram-url = %q
# language = %q
# model = %q
# The API key is read from %s only.

[practice]
# level = %d                     # Word level for terminal sessions (0 = all)
# words = %d                   # Words per card
# focus-weak = false            # Bias cards toward misread words
# weak-top = %d                  # Number of weak words to focus on
# weak-factor = %.1f             # Weight factor for weak words
# weak-window = %d              # Number of recent sessions to compute weak words
`,
		config.DefaultAddr, config.EnvAddr,
		config.DefaultCORSOrigin,
		config.DefaultDBPath(), config.EnvDatabaseURL,
		config.EnvSecretKey,
		config.DefaultTokenTTLMinutes, config.EnvTokenTTL,
		config.DefaultSessionDuration,
		config.DefaultStaleAfterMinutes,
		config.DefaultSweepIntervalMinutes,
		config.DefaultDeepgramURL,
		config.DefaultSpeechLanguage,
		config.DefaultSpeechModel,
		config.EnvDeepgramAPIKey,
		defaultLevel,
		defaultWords,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
