package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "capital-cli",
	Short: "Capital project budget monitoring pipeline",
	Long:  "Normalizes messy capital-project spreadsheets, derives financial KPIs (run rate, variance, spread score), and renders grouped summaries and exportable reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
