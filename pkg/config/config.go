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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Notifications NotificationsConfig
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
	Env          string `envconfig:"AGROMART_APP_ENV" required:"true"`
	Port         string `envconfig:"AGROMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGROMART_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"AGROMART_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"AGROMART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"AGROMART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"AGROMART_DB_DSN"`
	Driver string `envconfig:"AGROMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGROMART_DB_HOST"`
	LegacyPort     int    `envconfig:"AGROMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGROMART_DB_USER"`
	LegacyPassword string `envconfig:"AGROMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGROMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGROMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGROMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGROMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGROMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGROMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGROMART_REDIS_URL"`
	Address      string        `envconfig:"AGROMART_REDIS_ADDR"`
	Password     string        `envconfig:"AGROMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGROMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGROMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGROMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGROMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGROMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGROMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AGROMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AGROMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AGROMART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// SessionTTL mirrors the access token lifetime so the session key expires with it.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGROMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGROMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGROMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGROMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGROMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AGROMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AGROMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AGROMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AGROMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AGROMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AGROMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGROMART_AUTO_MIGRATE" default:"false"`
}

type NotificationsConfig struct {
	DefaultPageSize   int `envconfig:"AGROMART_NOTIFICATIONS_PAGE_SIZE" default:"20"`
	RetentionDays     int `envconfig:"AGROMART_NOTIFICATIONS_RETENTION_DAYS" default:"30"`
	LowStockThreshold int `envconfig:"AGROMART_LOW_STOCK_THRESHOLD" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"AGROMART_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"AGROMART_CRON_LOCK_TTL" default:"25h"`
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
