package hardcover

// DefaultEndpoint is the production Hardcover GraphQL endpoint.
const DefaultEndpoint = "https://api.hardcover.app/v1/graphql"

// Config holds configuration for the Hardcover API client.
type Config struct {
	// ApiToken is the bearer token from Hardcover account settings.
	ApiToken string `mapstructure:"api_token" default:""`
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string `mapstructure:"endpoint" default:"https://api.hardcover.app/v1/graphql"`
	// RateLimitDelay is the minimum spacing between requests in seconds.
	// Non-positive or unparseable values fall back to the default.
	RateLimitDelay float64 `mapstructure:"rate_limit_delay" default:"1.1"`
	// TimeoutSeconds is the per-request ceiling after which a single
	// request fails rather than hangs.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// DefaultRateLimitDelay keeps the client just under Hardcover's
// 60-requests-per-minute limit.
const DefaultRateLimitDelay = 1.1
