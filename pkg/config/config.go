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
	Impersonation ImpersonationConfig
	Team          TeamConfig
	Export        ExportConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Impersonation.ensureSecret(cfg.JWT); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALEROS_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALEROS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALEROS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"DEALEROS_LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"DEALEROS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DEALEROS_DB_DSN"`

	LegacyHost     string `envconfig:"DEALEROS_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALEROS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALEROS_DB_USER"`
	LegacyPassword string `envconfig:"DEALEROS_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALEROS_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALEROS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALEROS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALEROS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALEROS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALEROS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"DEALEROS_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALEROS_REDIS_URL"`
	Address      string        `envconfig:"DEALEROS_REDIS_ADDR"`
	Password     string        `envconfig:"DEALEROS_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALEROS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALEROS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALEROS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALEROS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALEROS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALEROS_REDIS_WRITE_TIMEOUT" default:"5s"`

	IdempotencyTTL time.Duration `envconfig:"DEALEROS_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DEALEROS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DEALEROS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DEALEROS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DEALEROS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEALEROS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEALEROS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEALEROS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEALEROS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEALEROS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DEALEROS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"DEALEROS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"DEALEROS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// ImpersonationConfig controls the signed support-session marker issued to platform admins.
type ImpersonationConfig struct {
	Secret       string        `envconfig:"DEALEROS_IMPERSONATION_SECRET"`
	TTL          time.Duration `envconfig:"DEALEROS_IMPERSONATION_TTL" default:"4h"`
	CookieName   string        `envconfig:"DEALEROS_IMPERSONATION_COOKIE" default:"impersonate_dealer"`
	SecureCookie bool          `envconfig:"DEALEROS_IMPERSONATION_SECURE_COOKIE" default:"true"`
}

// ensureSecret falls back to the access token secret with a distinct audience baked in by the signer.
func (i *ImpersonationConfig) ensureSecret(jwt JWTConfig) error {
	if i.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvImpersonationTTL)
	}
	if strings.TrimSpace(i.Secret) == "" {
		i.Secret = jwt.Secret
	}
	if strings.TrimSpace(i.CookieName) == "" {
		i.CookieName = DefaultImpersonationCookie
	}
	return nil
}

type TeamConfig struct {
	InvitationTTL time.Duration `envconfig:"DEALEROS_TEAM_INVITATION_TTL" default:"168h"`
}

type ExportConfig struct {
	ImageColumns int `envconfig:"DEALEROS_EXPORT_IMAGE_COLUMNS" default:"5"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DEALEROS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEALEROS_AUTO_MIGRATE" default:"false"`
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
