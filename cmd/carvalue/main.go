package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"carvalue/internal/config"
	"carvalue/internal/preferences"
)

var (
	// Global flags
	verbose   bool
	plain     bool
	prefsPath string
	provider  string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "carvalue",
	Short: "Estimate the market value of a used car",
	Long: `carvalue estimates what a used car is worth.

Describe the car in plain words in the chat, or pass every detail as flags
to the estimate command. Valuations come from Gemini or an OpenAI-compatible
model when an API key is configured, otherwise from an offline formula.

Run without arguments to start the chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if provider != "" {
			cfg.Valuation.Provider = provider
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if prefsPath == "" {
			prefsPath = cfg.Theme.PrefsPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Print markdown as-is instead of rendering it")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Preferences file (default $CARVALUE_PREFS_PATH or ~/.carvalue/prefs.bolt)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Valuation provider: auto, gemini, openai, heuristic")

	rootCmd.AddCommand(chatCmd, estimateCmd, themeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openPrefs() preferences.Store {
	return preferences.NewBoltStore(prefsPath, cfg.Theme.DarkMode)
}

// darkMode reads the theme, falling back to the configured default
func darkMode(prefs preferences.Store) bool {
	dark, err := prefs.DarkMode()
	if err != nil {
		logger.Warn("could not read theme preference", zap.Error(err))
		return cfg.Theme.DarkMode
	}
	return dark
}
