package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; variable names carry the MAAJOD_ prefix
// explicitly in their tags.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Summary  SummaryConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"MAAJOD_APP_ENV" required:"true"`
	Port         string `envconfig:"MAAJOD_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"MAAJOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MAAJOD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MAAJOD_DB_DSN"`
	Driver string `envconfig:"MAAJOD_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MAAJOD_DB_HOST"`
	Port     int    `envconfig:"MAAJOD_DB_PORT" default:"5432"`
	User     string `envconfig:"MAAJOD_DB_USER"`
	Password string `envconfig:"MAAJOD_DB_PASSWORD"`
	Name     string `envconfig:"MAAJOD_DB_NAME"`
	SSLMode  string `envconfig:"MAAJOD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MAAJOD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAAJOD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MAAJOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MAAJOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MAAJOD_REDIS_URL"`
	Address      string        `envconfig:"MAAJOD_REDIS_ADDR"`
	Password     string        `envconfig:"MAAJOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"MAAJOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MAAJOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MAAJOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MAAJOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MAAJOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MAAJOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig carries the signing material. There is deliberately no fallback
// secret: the process refuses to boot without one.
type JWTConfig struct {
	Secret            string `envconfig:"MAAJOD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MAAJOD_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MAAJOD_JWT_EXPIRATION_MINUTES" default:"43200"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MAAJOD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MAAJOD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MAAJOD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MAAJOD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MAAJOD_ARGON_KEY_LEN" default:"32"`
}

type SummaryConfig struct {
	CacheTTL time.Duration `envconfig:"MAAJOD_SUMMARY_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"MAAJOD_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"MAAJOD_SQLITE_PATH" default:"maajod.db"`
	AutoMigrate bool   `envconfig:"MAAJOD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	pairs := []struct {
		env string
		val string
	}{
		{"MAAJOD_DB_HOST", db.Host},
		{"MAAJOD_DB_USER", db.User},
		{"MAAJOD_DB_NAME", db.Name},
	}
	for _, p := range pairs {
		if p.val == "" {
			missing = append(missing, p.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either MAAJOD_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
