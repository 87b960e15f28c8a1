package catalog

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the catalog service.
type Config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// When set, products are stored in Postgres instead of memory.
	PGDSN string `envconfig:"PG_DSN"`

	SeedDemoData bool `envconfig:"SEED_DEMO_DATA" default:"true"`

	UploadDir       string `envconfig:"UPLOAD_DIR" default:"static/images"`
	ImagePublicPath string `envconfig:"IMAGE_PUBLIC_PATH" default:"/static/images"`

	StatusURL string `envconfig:"STATUS_URL" default:"https://api.github.com/status"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Requests per window per client IP; 0 disables rate limiting.
	RateLimit       int `envconfig:"RATE_LIMIT" default:"0"`
	RateLimitWindow int `envconfig:"RATE_LIMIT_WINDOW" default:"60"`

	StatsInterval time.Duration `envconfig:"STATS_INTERVAL" default:"1m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
