package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Server         ServerConfig      `yaml:"server"`
	DatabaseConfig DatabaseConfig    `yaml:"databaseConfig"`
	RedisConfig    RedisConfig       `yaml:"redisConfig"`
	JWT            JWTConfig         `yaml:"jwt"`
	Lockout        LockoutConfig     `yaml:"lockout"`
	CSRF           CSRFConfig        `yaml:"csrf"`
	RateLimit      RateLimitConfig   `yaml:"rateLimit"`
	Maintenance    MaintenanceConfig `yaml:"maintenance"`
	Auth           AuthConfig        `yaml:"auth"`
	Log            LogConfig         `yaml:"log"`
}

// LoadConfig : читает yaml-файл, затем перекрывает значения переменными окружения
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать файл конфигурации: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults : заполняет незаданные параметры значениями по умолчанию
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "booking-server"
	}
	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTokenTTL == 0 {
		c.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Lockout.MaxAttempts == 0 {
		c.Lockout.MaxAttempts = 5
	}
	if c.Lockout.Window == 0 {
		c.Lockout.Window = 15 * time.Minute
	}
	if c.CSRF.HeaderName == "" {
		c.CSRF.HeaderName = "X-CSRF-Token"
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.TTL == 0 {
		c.RateLimit.TTL = time.Hour
	}
	if c.Maintenance.PruneInterval == 0 {
		c.Maintenance.PruneInterval = time.Hour
	}
	if c.Maintenance.RefreshRetention == 0 {
		c.Maintenance.RefreshRetention = 24 * time.Hour
	}
	if c.Auth.DefaultRole == "" {
		c.Auth.DefaultRole = "user"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("jwt.secret_key не задан"))
	}
	if c.JWT.AccessTokenTTL < 0 || c.JWT.RefreshTokenTTL < 0 {
		errs = append(errs, errors.New("время жизни токенов должно быть положительным"))
	}
	if c.Lockout.MaxAttempts < 1 {
		errs = append(errs, errors.New("lockout.max_attempts должен быть не меньше 1"))
	}
	if c.Lockout.Window < 0 {
		errs = append(errs, errors.New("lockout.window должен быть положительным"))
	}
	if c.CSRF.Secret == "" {
		errs = append(errs, errors.New("csrf.secret не задан"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, errors.New("auth.bcrypt_cost должен быть в диапазоне 4..31"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("некорректная конфигурация: %w", errors.Join(errs...))
	}
	return nil
}

func SetupServer(cfg ServerConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
