// Package config provides configuration management for hardcover-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// a .env file, with defaults declared as struct tags on each section's
// Config type.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Hardcover: API token, endpoint, rate limit delay, request timeout
//   - Catalog: path to Calibre's metadata.db
//   - Sync: dry-run and owned-only switches
//   - Server: HTTP serve-mode settings (port, API key)
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Hardcover.RateLimitDelay)
package config
