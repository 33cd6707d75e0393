package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Block explorer API (native balance, transactions, price)
	Etherscan EtherscanConfig

	// Token data API (paginated token balances)
	Alchemy AlchemyConfig

	// Optional Ethereum node for on-chain token metadata
	Ethereum EthereumConfig

	// Database configuration (token catalog)
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Token balance aggregation settings
	Aggregator AggregatorConfig

	// Token catalog settings
	Catalog CatalogConfig

	// Logging configuration
	Log LogConfig
}

// EtherscanConfig holds block explorer settings
type EtherscanConfig struct {
	APIURL       string  `envconfig:"ETHERSCAN_API_URL" default:"https://api.etherscan.io/v2/api"`
	APIKey       string  `envconfig:"ETHERSCAN_API_KEY" default:""`
	RateLimitRPS float64 `envconfig:"ETHERSCAN_RATE_LIMIT_RPS" default:"5"`
}

// AlchemyConfig holds token data API settings
type AlchemyConfig struct {
	APIURL string `envconfig:"ALCHEMY_API_URL" default:"https://api.g.alchemy.com/data/v1"`
	APIKey string `envconfig:"ALCHEMY_API_KEY" default:""`
}

// EthereumConfig holds Ethereum node connection settings
type EthereumConfig struct {
	RPCURL         string        `envconfig:"ETH_RPC_URL" default:""`
	ChainID        int64         `envconfig:"ETH_CHAIN_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"ETH_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"ETH_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"ETH_RETRY_DELAY" default:"1s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Enabled         bool          `envconfig:"DB_ENABLED" default:"false"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"explorer"`
	Password        string        `envconfig:"DB_PASSWORD" default:"explorer"`
	Name            string        `envconfig:"DB_NAME" default:"wallet_explorer"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	// Prefix of every key written by this service
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"wallet-explorer:"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"API_CORS_ORIGINS" default:"*"`
}

// AggregatorConfig holds token balance aggregation settings
type AggregatorConfig struct {
	MaxPages    int     `envconfig:"AGGREGATOR_MAX_PAGES" default:"10"`
	MinValueUSD float64 `envconfig:"AGGREGATOR_MIN_VALUE_USD" default:"0.01"`
}

// CatalogConfig holds token catalog settings
type CatalogConfig struct {
	// Directory of token-list JSON files
	Dir string `envconfig:"CATALOG_DIR" default:""`

	// Optional YAML file overriding the built-in chain table
	ChainsFile string `envconfig:"CHAINS_FILE" default:""`

	// Reload interval of the token lists, 0 loads them once
	SyncInterval  time.Duration `envconfig:"CATALOG_SYNC_INTERVAL" default:"0"`
	ImportWorkers int           `envconfig:"CATALOG_IMPORT_WORKERS" default:"4"`

	// Metrics port of the catalog worker when it runs on an interval
	MetricsPort int `envconfig:"CATALOG_METRICS_PORT" default:"9091"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that envconfig cannot express
func (c *Config) Validate() error {
	if c.Aggregator.MaxPages < 1 {
		return fmt.Errorf("AGGREGATOR_MAX_PAGES must be at least 1, got %d", c.Aggregator.MaxPages)
	}
	if c.Aggregator.MinValueUSD < 0 {
		return fmt.Errorf("AGGREGATOR_MIN_VALUE_USD must not be negative")
	}
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("API_CACHE_TTL must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
