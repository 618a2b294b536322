package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "water-atlas",
	Short: "Explore historical water scarcity by food production unit",
	Long:  "Loads ISIMIP water stress and shortage data, aggregates it by world region and serves the atlas views, exports and shareable links.",
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
