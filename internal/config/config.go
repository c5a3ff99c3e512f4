// Package config читает настройки сервиса из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	GinMode         string
	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration

	DB       DBConfig
	RedisURL string
	Auth     AuthConfig
	CORS     CORSConfig
	WS       WSConfig
	Upload   UploadConfig
}

type DBConfig struct {
	// URL строка подключения postgres. Пустая значит sqlite.
	URL        string
	SQLitePath string
}

type AuthConfig struct {
	JWTSecret     string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type WSConfig struct {
	SendBuffer      int
	EventsPerSecond float64
	EventBurst      int
}

type UploadConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

// Enabled сообщает, настроено ли объектное хранилище
func (u UploadConfig) Enabled() bool {
	return u.Endpoint != ""
}

func Load() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		GinMode:         normalizeGinMode(getenv("GIN_MODE", "release")),
		LogLevel:        strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogPretty:       getbool("LOG_PRETTY", false),
		ShutdownTimeout: getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		DB: DBConfig{
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: getenv("SQLITE_PATH", "groupchat.db"),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     getdur("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    getdur("REFRESH_TOKEN_TTL", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		WS: WSConfig{
			SendBuffer:      getint("WS_SEND_BUFFER", 256),
			EventsPerSecond: getfloat("WS_EVENTS_PER_SECOND", 20),
			EventBurst:      getint("WS_EVENT_BURST", 40),
		},
		Upload: UploadConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenv("MINIO_BUCKET", "chat-media"),
			UseSSL:    getbool("MINIO_USE_SSL", false),
			URLTTL:    getdur("UPLOAD_URL_TTL", time.Hour),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.Auth.RefreshSecret == "" {
		cfg.Auth.RefreshSecret = cfg.Auth.JWTSecret + ":refresh"
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad как Load, но паникует при ошибке
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not supported", c.LogLevel))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.WS.SendBuffer <= 0 {
		errs = append(errs, errors.New("WS_SEND_BUFFER must be positive"))
	}
	if c.WS.EventsPerSecond <= 0 || c.WS.EventBurst <= 0 {
		errs = append(errs, errors.New("websocket rate limit must be positive"))
	}
	if c.Upload.Enabled() && (c.Upload.AccessKey == "" || c.Upload.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getenv(key, "")); err == nil {
		return d
	}
	return def
}

func getint(key string, def int) int {
	if n, err := strconv.Atoi(getenv(key, "")); err == nil {
		return n
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(getenv(key, ""), 64); err == nil {
		return f
	}
	return def
}

func getbool(key string, def bool) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func normalizeGinMode(mode string) string {
	switch strings.ToLower(mode) {
	case "debug", "test", "release":
		return strings.ToLower(mode)
	default:
		return "release"
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
