// Package config provides the service configuration structures and the functions
// that load them from a YAML file and/or the process environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration of the booking service.
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	CORS                    CORS            `yaml:"cors"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	SMTP                    SMTP            `yaml:"smtp"`
	Reminder                Reminder        `yaml:"reminder"`
}

// HTTPServer holds the listener settings.
type HTTPServer struct {
	Port        string        `yaml:"port" env:"PORT" env-required:"true"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the listen address built from the configured port.
func (s HTTPServer) Address() string {
	return ":" + s.Port
}

// JWTToken holds the signing secret and lifetime of issued tokens.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
}

// CORS holds the single origin allowed to call the API from a browser.
type CORS struct {
	AllowedOrigin string `yaml:"allowed_origin" env:"CORS_ORIGIN" env-default:"http://localhost:8000"`
}

// RateLimit configures the per-client limiter on the auth endpoints.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"AUTH_RATE_RPS" env-default:"5"`
	Burst int     `yaml:"burst" env:"AUTH_RATE_BURST" env-default:"10"`
}

// RedisConnection configures the optional cache. An empty address disables it.
type RedisConnection struct {
	Addr        string        `yaml:"address" env:"REDIS_ADDR"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"REDIS_USER"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ configures booking event publishing. An empty URL disables it.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// SMTP configures the mail transport used by the notification sender.
type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Reminder configures the reminder scheduler. Bookings starting within Lead
// are reminded once; the store is polled every Interval.
type Reminder struct {
	Lead     time.Duration `yaml:"lead" env:"REMINDER_LEAD" env-default:"24h"`
	Interval time.Duration `yaml:"interval" env:"REMINDER_INTERVAL" env-default:"1h"`
}

// Load reads the configuration. Variables from a local .env file are applied first,
// then the YAML file named by CONFIG_PATH (if any), then the process environment.
func Load() (*Config, error) {
	const op = "config.Load"

	_ = godotenv.Load()

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// validate catches required values that were present but empty,
// which cleanenv accepts.
func (c *Config) validate() error {
	switch {
	case c.StorageConnectionString == "":
		return errors.New("database connection string is required")
	case c.JWTToken.JWTSecretKey == "":
		return errors.New("jwt secret is required")
	case c.HTTPServer.Port == "":
		return errors.New("listen port is required")
	}
	return nil
}

// MustLoad is like Load but terminates the process when the configuration is incomplete.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Port: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"CORS:\n"+
			"  AllowedOrigin: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"Reminder:\n"+
			"  Lead: %s\n"+
			"  Interval: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.HTTPServer.Port,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		mask(c.JWTToken.JWTSecretKey),
		c.JWTToken.TokenTTL,
		c.CORS.AllowedOrigin,
		c.RedisConnection.Addr,
		mask(c.RabbitMQ.URL),
		c.Reminder.Lead,
		c.Reminder.Interval,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
