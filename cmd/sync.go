package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/config"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/logger"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncIDs       string
	syncDryRun    bool
	skipPreflight bool
)

// syncCmd runs one reconciliation of the Calibre library against Hardcover.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the Calibre library to Hardcover's owned list",
	Long: `Sync every book in the local Calibre library to Hardcover.

Books already on the owned list are skipped. Books found by ISBN or title
search are marked owned. Books not found at all are created, then marked.

Examples:
  # Sync the whole library
  hardcover-sync sync

  # Sync specific Calibre book IDs
  hardcover-sync sync --ids 12,47,105

  # Report what would change without touching Hardcover
  hardcover-sync sync --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncIDs, "ids", "", "Comma-separated Calibre book IDs (default: whole library)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report planned changes without mutating Hardcover")
	syncCmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the API token connection test")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if cfg.Hardcover.ApiToken == "" {
		return fmt.Errorf("no API token configured; set HARDCOVER_API_TOKEN")
	}
	if syncDryRun {
		cfg.Sync.DryRun = true
	}

	// Open the Calibre library
	db, err := catalog.Connect(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open calibre library: %w", err)
	}
	library := catalog.NewLibrary(db)

	client := hardcover.NewClient(cfg.Hardcover, l)

	if !skipPreflight {
		if !client.TestConnection(ctx) {
			return fmt.Errorf("connection test failed; check your API token")
		}
		l.Info("Connection test passed")
	}

	ids, err := resolveBookIDs(ctx, library)
	if err != nil {
		return err
	}
	l.Info("Starting sync", zap.Int("books", len(ids)), zap.Bool("dry_run", cfg.Sync.DryRun))

	engine := sync.NewEngine(client, library, l, cfg.Sync)
	runner := sync.NewRunner(engine, ids, l)
	runner.Start(ctx)

	// Report progress while the run works through the library.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-runner.Done():
			if err := runner.Err(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Println(runner.Result().Summary(len(ids)))
			return nil
		case <-ticker.C:
			l.Info("Sync progress",
				zap.Int("percent", runner.Progress()),
				zap.String("status", runner.Status()),
			)
		}
	}
}

// resolveBookIDs parses the --ids flag, falling back to the whole library.
func resolveBookIDs(ctx context.Context, library *catalog.Library) ([]int64, error) {
	if syncIDs == "" {
		ids, err := library.AllIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get book list: %w", err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("no books found in the library")
		}
		return ids, nil
	}

	var ids []int64
	for _, part := range strings.Split(syncIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid book id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no book ids given")
	}
	return ids, nil
}
