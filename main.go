package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-intelligence/internal/config"
	"github.com/insightdelivered/statement-intelligence/internal/logger"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
	"github.com/insightdelivered/statement-intelligence/internal/store"
)

const version = "2.0.0"

var (
	envFile   string
	debug     bool
	rulesPath string
)

var rootCmd = &cobra.Command{
	Use:     "statement-intel",
	Short:   "Detect recurring payments in bank statements",
	Version: version,
	Long: `statement-intel turns bank statement PDFs from Metro Bank, HSBC,
Barclays, Lloyds and other UK banks into transactions, recurring
payment patterns and life-domain suggestions.

Example:
  statement-intel analyze statement.pdf
  statement-intel analyze --bank=hsbc --patterns-output=bills.csv jan.pdf feb.pdf
  statement-intel serve --addr=:8080
  statement-intel rules --rules=rules.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "detection rule set YAML (default built-in rules)")

	rootCmd.AddCommand(analyzeCmd, serveCmd, rulesCmd, extractCmd, forgetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.SetDebug(cfg.Debug)
	return cfg, nil
}

func loadRules(cfg *config.Config) (*rules.RuleSet, error) {
	rs, err := cfg.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return rs, nil
}

// openStore returns the SQLite history at path, or an in-memory store.
func openStore(path string) (store.FingerprintStore, error) {
	if path == "" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(path)
}
