package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Admin        AdminConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Admin.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HBNB_APP_ENV" required:"true"`
	Port         string `envconfig:"HBNB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HBNB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HBNB_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma-separated allow list; empty means local dev origins.
	CORSOrigins []string `envconfig:"HBNB_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HBNB_DB_DSN"`
	Driver string `envconfig:"HBNB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HBNB_DB_HOST"`
	LegacyPort     int    `envconfig:"HBNB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HBNB_DB_USER"`
	LegacyPassword string `envconfig:"HBNB_DB_PASSWORD"`
	LegacyName     string `envconfig:"HBNB_DB_NAME"`
	LegacySSLMode  string `envconfig:"HBNB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HBNB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HBNB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HBNB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HBNB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery is the threshold above which statements are logged; zero disables.
	SlowQuery time.Duration `envconfig:"HBNB_DB_SLOW_QUERY" default:"250ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite dialect.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional: with neither URL nor address set, sessions are
// stateless and logout cannot revoke access tokens.
type RedisConfig struct {
	URL          string        `envconfig:"HBNB_REDIS_URL"`
	Address      string        `envconfig:"HBNB_REDIS_ADDR"`
	Password     string        `envconfig:"HBNB_REDIS_PASSWORD"`
	DB           int           `envconfig:"HBNB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HBNB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HBNB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HBNB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HBNB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HBNB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"HBNB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HBNB_JWT_ISSUER" default:"hbnb"`
	ExpirationMinutes      int    `envconfig:"HBNB_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"HBNB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HBNB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HBNB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HBNB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HBNB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HBNB_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HBNB_AUTO_MIGRATE" default:"false"`
}

// AdminConfig seeds the first administrator on startup.
type AdminConfig struct {
	Email     string `envconfig:"HBNB_ADMIN_EMAIL"`
	Password  string `envconfig:"HBNB_ADMIN_PASSWORD"`
	FirstName string `envconfig:"HBNB_ADMIN_FIRST_NAME" default:"Admin"`
	LastName  string `envconfig:"HBNB_ADMIN_LAST_NAME" default:"HBnB"`
}

// Enabled reports whether a bootstrap admin is configured.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.Email) != ""
}

func (a AdminConfig) validate() error {
	if a.Enabled() && a.Password == "" {
		return fmt.Errorf("%s is required when %s is set", EnvAdminPassword, EnvAdminEmail)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
