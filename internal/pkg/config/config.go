package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the client process configuration.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR, default=127.0.0.1:8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`

	API   APIConfig
	Store StoreConfig
}

// APIConfig points at the marketplace REST API.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:5000/api"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

// StoreConfig selects where the token survives restarts.
type StoreConfig struct {
	Kind       string `env:"TOKEN_STORE, default=file"`
	FilePath   string `env:"TOKEN_FILE,  default=.marketplace/token"`
	SQLitePath string `env:"SQLITE_PATH, default=.marketplace/session.db"`
	RedisAddr  string `env:"REDIS_ADDR,  default=localhost:6379"`
	RedisDB    int    `env:"REDIS_DB,    default=0"`
}

// DevServerConfig configures the local marketplace API double.
type DevServerConfig struct {
	ListenAddr string        `env:"DEVSERVER_ADDR, default=127.0.0.1:5000"`
	Env        string        `env:"ENV,            default=development"`
	LogLevel   string        `env:"LOG_LEVEL,      default=info"`
	JWTSecret  string        `env:"JWT_SECRET,     default=dev-secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,      default=24h"`

	AdminEmail    string `env:"ADMIN_EMAIL,    default=admin@marketplace.local"`
	AdminPassword string `env:"ADMIN_PASSWORD, default=admin123"`
}

// Pretty reports whether logs should use the console writer.
func (c *Config) Pretty() bool { return c.Env == "development" }

// Load reads the client configuration from the environment.
func Load() *Config {
	var cfg Config
	mustProcess(envconfig.OsLookuper(), &cfg)
	return &cfg
}

// LoadFrom is Load with an explicit lookuper, for tests.
func LoadFrom(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := process(l, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDevServer reads the devserver configuration from the environment.
func LoadDevServer() *DevServerConfig {
	var cfg DevServerConfig
	mustProcess(envconfig.OsLookuper(), &cfg)
	return &cfg
}

func mustProcess(l envconfig.Lookuper, cfg any) {
	if err := process(l, cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
}

func process(l envconfig.Lookuper, cfg any) error {
	return envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	})
}
