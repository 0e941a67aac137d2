package config

import "time"

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// JWTConfig : параметры подписи и время жизни токенов
type JWTConfig struct {
	SecretKey       string        `yaml:"secret_key" env:"JWT_SECRET"`
	Issuer          string        `yaml:"issuer"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TTL"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REFRESH_TTL"`
}

// LockoutConfig : блокировка аккаунта после серии неудачных входов
type LockoutConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"LOCKOUT_MAX_ATTEMPTS"`
	Window      time.Duration `yaml:"window" env:"LOCKOUT_WINDOW"`
}

type CSRFConfig struct {
	Secret     string `yaml:"secret" env:"CSRF_SECRET"`
	HeaderName string `yaml:"header_name"`
}

// RateLimitConfig : лимит запросов на публичные ручки аутентификации (на один IP)
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	TTL               time.Duration `yaml:"ttl"`
}

// MaintenanceConfig : фоновая очистка черного списка и просроченных refresh-токенов
type MaintenanceConfig struct {
	PruneInterval    time.Duration `yaml:"prune_interval"`
	RefreshRetention time.Duration `yaml:"refresh_retention"`
}

type AuthConfig struct {
	DefaultRole string `yaml:"default_role"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}
