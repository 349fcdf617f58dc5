package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Paystack      PaystackConfig
	SMTP          SMTPConfig
	Expo          ExpoConfig
	Notify        NotifyConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LINESCOUT_APP_ENV" required:"true"`
	Port         string `envconfig:"LINESCOUT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LINESCOUT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LINESCOUT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LINESCOUT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LINESCOUT_DB_DSN"`
	Driver string `envconfig:"LINESCOUT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LINESCOUT_DB_HOST"`
	LegacyPort     int    `envconfig:"LINESCOUT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LINESCOUT_DB_USER"`
	LegacyPassword string `envconfig:"LINESCOUT_DB_PASSWORD"`
	LegacyName     string `envconfig:"LINESCOUT_DB_NAME"`
	LegacySSLMode  string `envconfig:"LINESCOUT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LINESCOUT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LINESCOUT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LINESCOUT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LINESCOUT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LINESCOUT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LINESCOUT_REDIS_ADDR"`
	Password     string        `envconfig:"LINESCOUT_REDIS_PASSWORD"`
	DB           int           `envconfig:"LINESCOUT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LINESCOUT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LINESCOUT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LINESCOUT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LINESCOUT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LINESCOUT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LINESCOUT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LINESCOUT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LINESCOUT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LINESCOUT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LINESCOUT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LINESCOUT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LINESCOUT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LINESCOUT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LINESCOUT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"LINESCOUT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"LINESCOUT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"LINESCOUT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LINESCOUT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LINESCOUT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LINESCOUT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LINESCOUT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LINESCOUT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"LINESCOUT_PUBSUB_NOTIFICATION_TOPIC" default:"ls-notification-events"`
	NotificationSubscription string `envconfig:"LINESCOUT_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LINESCOUT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LINESCOUT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LINESCOUT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PaystackConfig struct {
	SecretKey string        `envconfig:"LINESCOUT_PAYSTACK_SECRET_KEY" required:"true"`
	BaseURL   string        `envconfig:"LINESCOUT_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	Timeout   time.Duration `envconfig:"LINESCOUT_PAYSTACK_TIMEOUT" default:"15s"`
}

type SMTPConfig struct {
	Host     string `envconfig:"LINESCOUT_SMTP_HOST"`
	Port     int    `envconfig:"LINESCOUT_SMTP_PORT" default:"587"`
	User     string `envconfig:"LINESCOUT_SMTP_USER"`
	Password string `envconfig:"LINESCOUT_SMTP_PASS"`
	From     string `envconfig:"LINESCOUT_SMTP_FROM"`
}

// Enabled reports whether outbound email is configured at all.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type ExpoConfig struct {
	PushURL string        `envconfig:"LINESCOUT_EXPO_PUSH_URL" default:"https://exp.host/--/api/v2/push/send"`
	Timeout time.Duration `envconfig:"LINESCOUT_EXPO_TIMEOUT" default:"10s"`
}

type NotifyConfig struct {
	AdminEmail string `envconfig:"LINESCOUT_ADMIN_EMAIL" default:"ops@linescout.africa"`
}

type CronConfig struct {
	NotificationRetention time.Duration `envconfig:"LINESCOUT_CRON_NOTIFICATION_RETENTION" default:"720h"`
	StaleHandoffAfter     time.Duration `envconfig:"LINESCOUT_CRON_STALE_HANDOFF_AFTER" default:"6h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
