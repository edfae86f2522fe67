package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-intelligence/internal/extractor"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective detection rule set as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rs, err := loadRules(cfg)
		if err != nil {
			return err
		}
		out, err := rules.Marshal(rs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <statement.pdf>",
	Short: "Print the text extracted from a statement",
	Long:  "Print the flattened statement text the parsers see. Useful when a layout is not recognised.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := extractor.ReadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete an owner's transaction fingerprints from the history database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if ownerFlag != "" {
			cfg.OwnerID = ownerFlag
		}
		if dbFlag != "" {
			cfg.FingerprintDB = dbFlag
		}
		if cfg.FingerprintDB == "" {
			return fmt.Errorf("no history database: set --db or FINGERPRINT_DB")
		}
		st, err := openStore(cfg.FingerprintDB)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Forget(cmd.Context(), cfg.OwnerID)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d fingerprint(s) for %s\n", n, cfg.OwnerID)
		return nil
	},
}

func init() {
	forgetCmd.Flags().StringVar(&ownerFlag, "owner", "", "owner id (default $OWNER_ID)")
	forgetCmd.Flags().StringVar(&dbFlag, "db", "", "SQLite fingerprint history (default $FINGERPRINT_DB)")
}
