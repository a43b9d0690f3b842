package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Redis      RedisConfig      `yaml:"redis"`
	Sync       SyncConfig       `yaml:"sync"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	// Driver selects the storage backend: "sqlite" or "postgrest".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SyncConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	ListLimit    int           `yaml:"list_limit"`
}

type ResolverConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	CORS      CORSConfig         `yaml:"cors"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML config at configPath, expanding ${VAR} references from
// the environment. A .env file next to the binary is picked up when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required for the sqlite driver")
		}
	case "postgrest":
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return errors.New("supabase url and anon_key are required for the postgrest driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = 10 * time.Second
	}
	if c.Sync.ListLimit == 0 {
		c.Sync.ListLimit = 50
	}
	if c.Resolver.CacheTTL == 0 {
		c.Resolver.CacheTTL = time.Minute
	}
	if c.Resolver.FetchTimeout == 0 {
		c.Resolver.FetchTimeout = 3 * time.Second
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 20
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 40
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
