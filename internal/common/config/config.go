package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidConfigFile  = errors.New("invalid config file")
)

type BlogConfig struct {
	HTTPPort                string
	DatabaseURL             string
	JWTSecret               string
	RequestTimeout          time.Duration
	TokenTTL                time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
	EnsureSchema            bool
	LogDir                  string
	LogLevel                string
}

// fileConfig mirrors the environment keys so a YAML file named by
// BLOG_CONFIG_FILE can provide defaults. Environment always wins.
type fileConfig struct {
	HTTPPort                string `yaml:"http_port"`
	DatabaseURL             string `yaml:"database_url"`
	JWTSecret               string `yaml:"jwt_secret"`
	RequestTimeout          string `yaml:"request_timeout"`
	TokenTTL                string `yaml:"token_ttl"`
	CircuitBreakerThreshold string `yaml:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   string `yaml:"circuit_breaker_timeout"`
	CircuitBreakerReset     string `yaml:"circuit_breaker_reset"`
	EnsureSchema            string `yaml:"ensure_schema"`
	LogDir                  string `yaml:"log_dir"`
	LogLevel                string `yaml:"log_level"`
}

func (f fileConfig) values() map[string]string {
	return map[string]string{
		"BLOG_HTTP_PORT":            f.HTTPPort,
		"DATABASE_URL":              f.DatabaseURL,
		"JWT_SECRET":                f.JWTSecret,
		"BLOG_REQUEST_TIMEOUT":      f.RequestTimeout,
		"TOKEN_TTL":                 f.TokenTTL,
		"CIRCUIT_BREAKER_THRESHOLD": f.CircuitBreakerThreshold,
		"CIRCUIT_BREAKER_TIMEOUT":   f.CircuitBreakerTimeout,
		"CIRCUIT_BREAKER_RESET":     f.CircuitBreakerReset,
		"DB_ENSURE_SCHEMA":          f.EnsureSchema,
		"LOG_DIR":                   f.LogDir,
		"LOG_LEVEL":                 f.LogLevel,
	}
}

type source struct {
	file map[string]string
}

func LoadBlogConfig() (BlogConfig, error) {
	src := source{}

	if path := os.Getenv("BLOG_CONFIG_FILE"); path != "" {
		values, err := readConfigFile(path)
		if err != nil {
			return BlogConfig{}, err
		}
		src.file = values
	}

	jwtSecret, err := src.mustEnv("JWT_SECRET")
	if err != nil {
		return BlogConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return BlogConfig{}, err
	}

	databaseURL, err := src.mustEnv("DATABASE_URL")
	if err != nil {
		return BlogConfig{}, err
	}

	return BlogConfig{
		HTTPPort:                src.getEnv("BLOG_HTTP_PORT", constants.DefaultBlogHTTPPort),
		DatabaseURL:             databaseURL,
		JWTSecret:               jwtSecret,
		RequestTimeout:          src.getDurationEnv("BLOG_REQUEST_TIMEOUT", constants.DefaultBlogRequestTimeout),
		TokenTTL:                src.getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		CircuitBreakerThreshold: int32(src.getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold)),
		CircuitBreakerTimeout:   src.getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:     src.getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),
		EnsureSchema:            src.getBoolEnv("DB_ENSURE_SCHEMA", true),
		LogDir:                  src.getEnv("LOG_DIR", ""),
		LogLevel:                src.getEnv("LOG_LEVEL", "info"),
	}, nil
}

func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfigFile, err)
	}

	return fc.values(), nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func (s source) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if v := s.file[key]; v != "" {
		return v, true
	}
	return "", false
}

func (s source) getEnv(key, fallback string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return fallback
}

func (s source) mustEnv(key string) (string, error) {
	v, ok := s.lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func (s source) getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func (s source) getIntEnv(key string, fallback int) int {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func (s source) getBoolEnv(key string, fallback bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
