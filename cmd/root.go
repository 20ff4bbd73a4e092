// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sbenkov/aviator/internal/config"
	"github.com/sbenkov/aviator/internal/observability"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "aviator",
	Short:   "Aviator drives a stealth browser session for autonomous agents.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Runs before any command: load configuration, then logging.
		if err := initializeConfig(); err != nil {
			return err
		}

		// Validate the configuration up front; commands re-read it after
		// binding their own flags.
		cfg, err := configFromViper()
		if err != nil {
			// Fall back to a minimal logger so the failure is at least visible.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "aviator"})
			return fmt.Errorf("loading configuration: %w", err)
		}

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("Starting aviator.", zap.String("version", Version))
		return nil
	},
}

// Execute runs the root command under a signal-aware context so an
// interrupt tears browsers down instead of orphaning them.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./aviator.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newInspectCmd())
}

// configFromViper rebuilds the typed config. Commands that bind flags in
// PreRunE call this so flag overrides are reflected.
func configFromViper() (*config.Config, error) {
	return config.NewConfigFromViper(viper.GetViper())
}

// initializeConfig reads in the config file and environment variables.
func initializeConfig() error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "aviator"))
		}
		v.SetConfigName("aviator")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AVIATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
	}
	return nil
}
