package cmd

import (
	"context"
	"fmt"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/config"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/logger"

	"github.com/spf13/cobra"
)

// testCmd verifies the configured API token against Hardcover.
var testCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify the Hardcover API token",
	Long:  `Runs a minimal authenticated query against Hardcover to confirm the API token works.`,
	RunE:  runTestConnection,
}

func init() {
	RootCmd.AddCommand(testCmd)
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if cfg.Hardcover.ApiToken == "" {
		return fmt.Errorf("no API token configured; set HARDCOVER_API_TOKEN")
	}

	client := hardcover.NewClient(cfg.Hardcover, l)
	if !client.TestConnection(ctx) {
		return fmt.Errorf("connection test failed; check your API token")
	}

	fmt.Println("Connection test passed")
	return nil
}
