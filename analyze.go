package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-intelligence/internal/detector"
	"github.com/insightdelivered/statement-intelligence/internal/logger"
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/parser"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
	"github.com/insightdelivered/statement-intelligence/internal/scheduler"
	"github.com/insightdelivered/statement-intelligence/internal/writer"
)

var (
	bankFlag           string
	ownerFlag          string
	outputFlag         string
	patternsOutputFlag string
	dbFlag             string
	headerFlag         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <statement.pdf|statement.txt>...",
	Short: "Extract transactions and recurring payments from statements",
	Long: `Parse each statement, detect recurring payments and write two CSV
files next to the input: <name>.csv with the transactions and
<name>-patterns.csv with the recurring payments.

Supported Banks:
  metro     - Metro Bank (DD/MM/YYYY format)
  hsbc      - HSBC UK (DD Mon YY format)
  barclays  - Barclays (DD/MM/YYYY or DD Mon YYYY format)
  lloyds    - Lloyds Bank (DD Mon YY with type codes)
  other UK banks use the generic layout`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&bankFlag, "bank", "", "bank type (auto-detected if omitted)")
	analyzeCmd.Flags().StringVar(&ownerFlag, "owner", "", "owner id used for fingerprints (default $OWNER_ID)")
	analyzeCmd.Flags().StringVar(&outputFlag, "output", "", "transactions CSV path (single input only)")
	analyzeCmd.Flags().StringVar(&patternsOutputFlag, "patterns-output", "", "patterns CSV path (single input only)")
	analyzeCmd.Flags().StringVar(&dbFlag, "db", "", "SQLite fingerprint history (default $FINGERPRINT_DB)")
	analyzeCmd.Flags().BoolVar(&headerFlag, "header", true, "include account metadata header rows in CSV")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && (outputFlag != "" || patternsOutputFlag != "") {
		return errors.New("--output and --patterns-output need a single input file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bank, err := parser.ParseBankType(bankFlag)
	if err != nil {
		return err
	}
	if ownerFlag != "" {
		cfg.OwnerID = ownerFlag
	}
	if dbFlag != "" {
		cfg.FingerprintDB = dbFlag
	}

	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}
	det, err := detector.New(cfg.Detection)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.FingerprintDB)
	if err != nil {
		return err
	}
	defer st.Close()

	log := logger.New()
	sched := scheduler.New(det, log, scheduler.Options{ParseTimeout: cfg.ParseTimeout, Store: st})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	for _, inputPath := range args {
		if err := analyzeFile(ctx, sched, rs, cfg.OwnerID, bank, inputPath); err != nil {
			return fmt.Errorf("error processing %s: %w", inputPath, err)
		}
	}
	return nil
}

func analyzeFile(ctx context.Context, sched *scheduler.Scheduler, rs *rules.RuleSet, owner string, bank models.BankType, inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	run, err := sched.Run(ctx, scheduler.Request{
		SessionID: inputPath,
		OwnerID:   owner,
		Bank:      bank,
		Data:      data,
		Rules:     rs,
	})
	if err != nil {
		return err
	}
	if run.Status != scheduler.StatusCompleted {
		return fmt.Errorf("run %s: %s", run.Status, run.Error)
	}
	res := run.Result

	fmt.Printf("  Bank: %s\n", res.Metadata.Bank)
	fmt.Printf("  Found %d transaction(s)", len(res.Transactions))
	if run.Duplicates != nil && *run.Duplicates > 0 {
		fmt.Printf(", %d already imported", *run.Duplicates)
	}
	fmt.Println()

	if len(res.Transactions) == 0 {
		fmt.Println("  Warning: No transactions found. The PDF format may not match expected patterns.")
		fmt.Println("  Try specifying the bank explicitly with --bank flag if auto-detection was used.")
	}

	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	outPath := outputFlag
	if outPath == "" {
		outPath = base + ".csv"
	}
	patternsPath := patternsOutputFlag
	if patternsPath == "" {
		patternsPath = base + "-patterns.csv"
	}

	w := &writer.CSVWriter{IncludeHeader: headerFlag}
	info := &models.StatementInfo{Metadata: res.Metadata, Transactions: res.Transactions}
	if err := w.WriteToFile(outPath, info); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if err := w.WritePatternsToFile(patternsPath, res.Patterns); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Output: %s, %s\n", outPath, patternsPath)
	for _, p := range res.Patterns {
		fmt.Printf("  %-28s %-10s %9.2f  conf %.2f  %s/%s\n",
			p.Payee, p.Frequency, p.AverageAmount, p.Confidence, p.SuggestedDomain, p.SuggestedRecordType)
	}
	fmt.Printf("  %d recurring payment(s) over %d day(s)\n", res.Statistics.RecurringDetected, res.Statistics.DateRangeDays)
	fmt.Println("  Done.")
	return nil
}
