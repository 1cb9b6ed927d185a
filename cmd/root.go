package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "quote-proxy",
	Short: "Caching price-quote proxy",
	Long: `Caching price-quote proxy in front of CoinGecko and OpenCNFT.

Quote requests are served from a short-TTL shared cache where possible;
misses go upstream through a distributed rate gate with proxy failover,
so a fleet of replicas stays under the provider's rate limits.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments inject the environment
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
