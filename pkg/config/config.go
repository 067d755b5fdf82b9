// Package config reads the TATAME_* environment into typed settings once at
// boot. Every binary shares the same Config; sections it does not use are
// simply ignored.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Stripe       StripeConfig
	Sendgrid     SendgridConfig
	Push         PushConfig
	Sentry       SentryConfig
	Cron         CronConfig
}

// Load parses the environment and then checks the cross-field rules envconfig
// cannot express. All violations are reported together.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if dsn, err := c.DB.resolveDSN(); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		c.DB.DSN = dsn
	}
	if _, err := c.App.Location(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Redis.URL == "" && c.Redis.Address == "" {
		errs = multierr.Append(errs, fmt.Errorf("one of %s or %s is required", EnvRedisURL, EnvRedisAddr))
	}
	if env := c.Stripe.Environment(); env != "test" && env != "live" {
		errs = multierr.Append(errs, fmt.Errorf("%s must be test or live, got %q", EnvStripeEnv, env))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"TATAME_APP_ENV" required:"true"`
	Port         string `envconfig:"TATAME_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TATAME_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TATAME_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"TATAME_APP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool  { return strings.EqualFold(a.Env, AppEnvDev) }
func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

// Location is the gym-local zone for class schedules and birthday checks.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvAppTimezone, name, err)
	}
	return loc, nil
}

// ServiceConfig.Kind is set by each binary, not read from the environment
// in practice; it tags logs and migration runs.
type ServiceConfig struct {
	Kind string `envconfig:"TATAME_SERVICE_KIND" default:"api"`
}

// DBConfig accepts either a full DSN or discrete connection parts.
type DBConfig struct {
	DSN    string `envconfig:"TATAME_DB_DSN"`
	Driver string `envconfig:"TATAME_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TATAME_DB_HOST"`
	Port     int    `envconfig:"TATAME_DB_PORT" default:"5432"`
	User     string `envconfig:"TATAME_DB_USER"`
	Password string `envconfig:"TATAME_DB_PASSWORD"`
	Name     string `envconfig:"TATAME_DB_NAME"`
	SSLMode  string `envconfig:"TATAME_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TATAME_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TATAME_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TATAME_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TATAME_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) resolveDSN() (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}

	var missing []string
	for name, value := range map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%s is unset and so are %s", EnvDBDSN, strings.Join(missing, ", "))
	}

	user := url.User(db.User)
	if db.Password != "" {
		user = url.UserPassword(db.User, db.Password)
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   db.Host + ":" + strconv.Itoa(db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return dsn.String(), nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TATAME_REDIS_URL"`
	Address      string        `envconfig:"TATAME_REDIS_ADDR"`
	Password     string        `envconfig:"TATAME_REDIS_PASSWORD"`
	DB           int           `envconfig:"TATAME_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TATAME_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TATAME_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TATAME_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TATAME_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TATAME_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig verifies session tokens from the identity provider offline
// against its PEM public key.
type IdentityConfig struct {
	JWTPublicKey      string        `envconfig:"TATAME_IDENTITY_JWT_PUBLIC_KEY" required:"true"`
	Issuer            string        `envconfig:"TATAME_IDENTITY_ISSUER"`
	AuthorizedParties []string      `envconfig:"TATAME_IDENTITY_AUTHORIZED_PARTIES"`
	ClockSkew         time.Duration `envconfig:"TATAME_IDENTITY_CLOCK_SKEW" default:"5s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TATAME_CORS_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TATAME_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TATAME_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TATAME_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TATAME_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"TATAME_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry time.Duration `envconfig:"TATAME_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	PublicBaseURL   string        `envconfig:"TATAME_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

// StripeConfig is optional: without an API key billing routes answer with a
// dependency error and the rest of the API still boots.
type StripeConfig struct {
	APIKey              string `envconfig:"TATAME_STRIPE_API_KEY"`
	Secret              string `envconfig:"TATAME_STRIPE_SECRET"`
	Env                 string `envconfig:"TATAME_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"TATAME_STRIPE_SUBSCRIPTION_PRICE_ID"`
}

// Environment is Env lower-cased, defaulting to "test".
func (s StripeConfig) Environment() string {
	if env := strings.ToLower(strings.TrimSpace(s.Env)); env != "" {
		return env
	}
	return "test"
}

type SendgridConfig struct {
	APIKey      string `envconfig:"TATAME_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"TATAME_SENDGRID_FROM_EMAIL" default:"no-reply@tatame.app"`
	FromName    string `envconfig:"TATAME_SENDGRID_FROM_NAME" default:"Tatame"`
}

type PushConfig struct {
	GatewayURL  string        `envconfig:"TATAME_PUSH_GATEWAY_URL" default:"https://exp.host/--/api/v2/push/send"`
	AccessToken string        `envconfig:"TATAME_PUSH_ACCESS_TOKEN"`
	Timeout     time.Duration `envconfig:"TATAME_PUSH_TIMEOUT" default:"10s"`
}

type SentryConfig struct {
	DSN              string  `envconfig:"TATAME_SENTRY_DSN"`
	TracesSampleRate float64 `envconfig:"TATAME_SENTRY_TRACES_SAMPLE_RATE" default:"0"`
}

func (s SentryConfig) Enabled() bool {
	return strings.TrimSpace(s.DSN) != ""
}

type CronConfig struct {
	Schedule string `envconfig:"TATAME_CRON_SCHEDULE" default:"0 9 * * *"`

	// MetricsAddr serves /metrics from the worker; empty disables it.
	MetricsAddr string `envconfig:"TATAME_CRON_METRICS_ADDR" default:":9100"`
}
