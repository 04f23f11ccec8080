package catalog

// Config holds configuration for the Calibre library connection.
type Config struct {
	// Path is the filesystem path to Calibre's metadata.db.
	Path string `mapstructure:"path" default:"metadata.db"`
	// TimeoutSeconds is the query timeout for library reads.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ReadOnly opens the database in read-only mode. The sync engine never
	// writes to the Calibre library, so this defaults to true.
	ReadOnly bool `mapstructure:"read_only" default:"true"`
}
