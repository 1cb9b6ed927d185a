package cmd

import (
	"fmt"

	"github.com/mselser95/quote-proxy/internal/app"
	"github.com/mselser95/quote-proxy/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one catalog sync pass and exit",
	Long: `Refreshes the coin and currency catalog once: fetches the provider's
market listing and supported currencies, upserts them into Postgres, and
deactivates entries that disappeared upstream. Intended for cron-style
deployments where the API replicas don't run the syncer themselves.`,
	RunE: runSync,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger, &app.Options{WithSyncer: true})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.SyncCatalog()
	if err != nil {
		return fmt.Errorf("sync catalog: %w", err)
	}

	return nil
}
