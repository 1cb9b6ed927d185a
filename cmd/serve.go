package cmd

import (
	"fmt"

	"github.com/mselser95/quote-proxy/internal/app"
	"github.com/mselser95/quote-proxy/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quote proxy API",
	Long: `Starts the quote proxy HTTP API, which will:
1. Serve ticker quotes from the shared cache, falling back to CoinGecko
2. Serve Ethereum and Cardano NFT rankings and floor prices
3. Coordinate upstream calls across replicas via the distributed rate gate

Use --with-syncer to also run the catalog sync job in this process.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("with-syncer", false, "Also run the background catalog sync job")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	withSyncer, _ := cmd.Flags().GetBool("with-syncer")

	application, err := app.New(cfg, logger, &app.Options{WithSyncer: withSyncer})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
