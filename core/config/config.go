package config

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/logger"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/server"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Hardcover holds configuration for the Hardcover API client.
	Hardcover hardcover.Config `mapstructure:"hardcover"`
	// Catalog holds configuration for the local Calibre library.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Sync holds the run options for the reconciliation engine.
	Sync sync.Options `mapstructure:"sync"`
	// Server holds configuration for the HTTP serve mode.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists; ignore the error when it doesn't
	// (e.g. production).
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. HARDCOVER_API_TOKEN -> hardcover.api_token)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// An unparseable rate limit delay falls back to the default rather
	// than failing the load.
	if _, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("hardcover.rate_limit_delay")), 64); err != nil {
		v.Set("hardcover.rate_limit_delay", hardcover.DefaultRateLimitDelay)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Hardcover.RateLimitDelay <= 0 {
		config.Hardcover.RateLimitDelay = hardcover.DefaultRateLimitDelay
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
