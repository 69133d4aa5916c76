package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	StoreMySQL = "mysql"
	StoreMongo = "mongo"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	Store          string
	MySQLDSN       string
	MigrateOnStart bool
	MongoURI       string
	MongoDB        string

	RedisAddr string
	RedisDB   int
	RedisPass string

	RateLimitMax    int
	RateLimitWindow time.Duration
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool
	CORSOrigins  []string

	PageMaxLimit  int
	BookingQuota  int
	AdminEmail    string
	AdminPassword string

	DirectoryBase string
	DirectoryKey  string
	ImportWorkers int
	ImportIDs     []int64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
		}
		return def
	}
	flag := func(k string) bool {
		b, _ := strconv.ParseBool(os.Getenv(k))
		return b
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":5003"),
		MetricsAddr: env("METRICS_ADDR", ""),

		Store:          strings.ToLower(env("STORE", StoreMySQL)),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_booking?parseTime=true&charset=utf8mb4&loc=UTC"),
		MigrateOnStart: flag("MIGRATE_ON_START"),
		MongoURI:       env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        env("MONGO_DB", "hotel_booking"),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		RateLimitMax:    atoi("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: time.Duration(atoi("RATE_LIMIT_WINDOW_SECONDS", 600)) * time.Second,
		TrustProxy:      flag("TRUST_PROXY"),

		JWTSecret:    env("JWT_SECRET", ""),
		JWTTTL:       time.Duration(atoi("JWT_EXPIRE_DAYS", 30)) * 24 * time.Hour,
		CookieSecure: flag("COOKIE_SECURE"),
		CORSOrigins:  splitList(env("CORS_ORIGINS", "*")),

		PageMaxLimit:  atoi("PAGE_MAX_LIMIT", 100),
		BookingQuota:  atoi("BOOKING_QUOTA", 3),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		DirectoryBase: env("DIRECTORY_BASE_URL", ""),
		DirectoryKey:  env("DIRECTORY_API_KEY", ""),
		ImportWorkers: atoi("IMPORT_WORKERS", 8),
	}

	ids, err := ParseIDs(os.Getenv("IMPORT_PROPERTY_IDS"))
	if err != nil {
		log.Warn().Err(err).Msg("ignoring IMPORT_PROPERTY_IDS")
	}
	c.ImportIDs = ids

	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}

// Validate reports settings the API cannot start without.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMySQL, StoreMongo:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMySQL, StoreMongo, c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	return nil
}

// ParseIDs reads a comma or whitespace separated list of property ids.
func ParseIDs(s string) ([]int64, error) {
	var out []int64
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' }) {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return out, fmt.Errorf("property id %q: %w", f, err)
		}
		out = append(out, id)
	}
	return out, nil
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

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
