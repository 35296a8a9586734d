package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

// Config holds boot-time configuration for the application.
type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	AppID   string `envconfig:"APP_ID" default:""`

	TLSAddr     string `envconfig:"TLS_ADDR" default:""`
	TLSCertFile string `envconfig:"TLS_CERT_FILE" default:""`
	TLSKeyFile  string `envconfig:"TLS_KEY_FILE" default:""`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`

	SessionHardTimeout time.Duration `envconfig:"SESSION_HARD_TIMEOUT" default:"12h"`
	SessionSoftTimeout time.Duration `envconfig:"SESSION_SOFT_TIMEOUT" default:"30m"`
	SessionCookieName  string        `envconfig:"SESSION_COOKIE_NAME" default:"OSTIARY_SESSION"`
	LoginURL           string        `envconfig:"LOGIN_URL" default:"/login/"`
	LoginRatePerMinute int           `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`

	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS"`
	CORSAllowMethods []string `envconfig:"CORS_ALLOW_METHODS"`

	DBFile         string        `envconfig:"DB_FILE" default:""`
	DBSaveInterval time.Duration `envconfig:"DB_SAVE_INTERVAL" default:"5m"`

	TemplatePath string `envconfig:"TEMPLATE_PATH" default:"./templates"`

	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"topsecret"`
	KDFIterations int    `envconfig:"KDF_ITERATIONS" default:"100000"`
	KDFAlgorithm  string `envconfig:"KDF_ALGORITHM" default:"sha256"`

	// MaxPasswordChecks bounds concurrent KDF comparisons; 0 means one per
	// CPU.
	MaxPasswordChecks int64 `envconfig:"MAX_PASSWORD_CHECKS" default:"0"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InstanceID returns the configured application id, generating a random one
// when none is set.
func (c *Config) InstanceID() string {
	if c.AppID != "" {
		return c.AppID
	}
	return "ostiary." + uuid.NewString()
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
