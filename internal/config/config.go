package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

// DefaultFile is the optional dotenv file read by the binaries.
const DefaultFile = "config.env"

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	Host        string
	Port        int
	DatabaseURL string // empty means in-memory store
	RedisURL    string // empty means in-memory sessions

	DefaultUsername string
	DefaultPassword string

	PrometheusEnabled bool
	LogDir            string
	LogLevel          string

	AdminAPIKeys   []string
	AllowedOrigins []string
	SecureCookies  bool // mark the session cookie Secure
	TrustProxy     bool // take client IPs from X-Forwarded-For / X-Real-IP

	SessionTTL  time.Duration
	LoginRPM    int
	LoginBurst  int
	StopTimeout time.Duration
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads defaults, then the dotenv file at path if it exists, then the
// environment. Later sources win.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 3030)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("DEFAULT_USERNAME", "admin")
	v.SetDefault("DEFAULT_PASSWORD", "admin")
	v.SetDefault("PROMETHEUS_ENABLED", true)
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_LEVEL", LogLevelInfo)
	v.SetDefault("ADMIN_API_KEYS", "")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("LOGIN_RPM", 30)
	v.SetDefault("LOGIN_BURST", 10)
	v.SetDefault("STOP_TIMEOUT", "5s")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		Host:              strings.TrimSpace(v.GetString("HOST")),
		Port:              v.GetInt("PORT"),
		DatabaseURL:       strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisURL:          strings.TrimSpace(v.GetString("REDIS_URL")),
		DefaultUsername:   v.GetString("DEFAULT_USERNAME"),
		DefaultPassword:   v.GetString("DEFAULT_PASSWORD"),
		PrometheusEnabled: v.GetBool("PROMETHEUS_ENABLED"),
		LogDir:            v.GetString("LOG_DIR"),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		AdminAPIKeys:      splitList(v.GetString("ADMIN_API_KEYS")),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		SecureCookies:     v.GetBool("SECURE_COOKIES"),
		TrustProxy:        v.GetBool("TRUST_PROXY"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		LoginRPM:          v.GetInt("LOGIN_RPM"),
		LoginBurst:        v.GetInt("LOGIN_BURST"),
		StopTimeout:       v.GetDuration("STOP_TIMEOUT"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabaseURL, validation.By(schemeIn("postgres", "postgresql"))),
		validation.Field(&c.RedisURL, validation.By(schemeIn("redis", "rediss"))),
		validation.Field(&c.DefaultUsername, validation.Required),
		validation.Field(&c.DefaultPassword, validation.Required),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.LoginRPM, validation.Min(0)),
		validation.Field(&c.LoginBurst, validation.Min(0)),
		validation.Field(&c.StopTimeout, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// schemeIn accepts an empty string or a URL with one of the given schemes.
func schemeIn(schemes ...string) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_invalid_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		i := strings.Index(s, "://")
		if i <= 0 {
			return validation.NewError("validation_invalid_url", "must be a URL")
		}
		scheme := strings.ToLower(s[:i])
		for _, want := range schemes {
			if scheme == want {
				return nil
			}
		}
		return validation.NewError("validation_invalid_scheme",
			fmt.Sprintf("scheme must be one of %s", strings.Join(schemes, ", ")))
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
