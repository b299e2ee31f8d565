package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/pkg/config"
	"github.com/wonny/twstrategy/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "twstrategy - 台股籌碼 + 技術面策略評分",
	Long: `twstrategy Unified CLI

Taiwan equity strategy scores from one trading day of institutional flow
(TWSE listed + TPEx OTC) combined with trailing price history.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant api
  go run ./cmd/quant score 2330
  go run ./cmd/quant score 台積電
  go run ./cmd/quant scan
  go run ./cmd/quant flow --date 2024-05-10`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// loadRuntime loads configuration and builds the logger, applying global flag overrides
func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
