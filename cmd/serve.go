package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/config"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/loader"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/logger"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/middleware/auth"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/middleware/rayid"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/feature/syncjob"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server so sync runs can be started and polled over the API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if cfg.Hardcover.ApiToken == "" {
			logg.Fatal("No API token configured; set HARDCOVER_API_TOKEN")
		}

		// 3. Open the Calibre library
		db, err := catalog.Connect(cfg.Catalog)
		if err != nil {
			logg.Fatal("Failed to open calibre library", zap.Error(err))
		}
		library := catalog.NewLibrary(db)
		logg.Info("Opened calibre library", zap.String("path", cfg.Catalog.Path))

		// 4. Initialize Hardcover client
		client := hardcover.NewClient(cfg.Hardcover, logg)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(syncjob.NewFeature(client, client, library, logg, cfg.Sync))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API when a key is configured)
		if cfg.Server.RequiresAuth() {
			app.Use(auth.New(cfg.Server.ApiKey))
		} else {
			logg.Warn("No API key configured; the API is open")
		}

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
