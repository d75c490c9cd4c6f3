package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-collectibles/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// OpenSeaConfig holds the OpenSea API configuration used for Ethereum collectibles
type OpenSeaConfig struct {
	APIURL            string       `mapstructure:"api_url"`
	APIKey            string       `mapstructure:"api_key"`
	ChainID           domain.Chain `mapstructure:"chain_id"`
	PageLimit         int          `mapstructure:"page_limit"`
	MaxPages          int          `mapstructure:"max_pages"`
	RequestsPerSecond float64      `mapstructure:"requests_per_second"`
	Burst             int          `mapstructure:"burst"`
}

// SolanaConfig holds the Solana DAS RPC configuration
type SolanaConfig struct {
	RPCURL            string       `mapstructure:"rpc_url"`
	ChainID           domain.Chain `mapstructure:"chain_id"`
	PageLimit         int          `mapstructure:"page_limit"`
	MaxPages          int          `mapstructure:"max_pages"`
	RequestsPerSecond float64      `mapstructure:"requests_per_second"`
	Burst             int          `mapstructure:"burst"`
}

// FetchConfig holds configuration for the per-wallet fetch fan-out
type FetchConfig struct {
	PoolSize                int           `mapstructure:"pool_size"`
	QueueSize               int           `mapstructure:"queue_size"`
	HTTPTimeout             time.Duration `mapstructure:"http_timeout"`
	MaterializerConcurrency int           `mapstructure:"materializer_concurrency"`
}

// MediaConfig holds the gateways used to resolve decentralized storage URIs
type MediaConfig struct {
	IPFSGateways    []string `mapstructure:"ipfs_gateways"`
	ArweaveGateways []string `mapstructure:"arweave_gateways"`
}

// RetryConfig holds configuration for retrying a whole fetch-and-reconcile cycle
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// Enabled reports whether any authentication method is configured
func (a AuthConfig) Enabled() bool {
	return a.JWTPublicKey != "" || len(a.APIKeys) > 0
}

// AggregatorConfig holds the configuration shared by every program that aggregates collectibles
type AggregatorConfig struct {
	BaseConfig     `mapstructure:",squash"`
	OpenSea        OpenSeaConfig `mapstructure:"opensea"`
	Solana         SolanaConfig  `mapstructure:"solana"`
	Fetch          FetchConfig   `mapstructure:"fetch"`
	Retry          RetryConfig   `mapstructure:"retry"`
	Media          MediaConfig   `mapstructure:"media"`
	BlacklistPath  string        `mapstructure:"blacklist_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxWallets     int           `mapstructure:"max_wallets"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	AggregatorConfig `mapstructure:",squash"`
	Server           ServerConfig `mapstructure:"server"`
	Auth             AuthConfig   `mapstructure:"auth"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setAggregatorDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.AggregatorConfig.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadCLIConfig loads configuration for the one-shot collectibles command
func LoadCLIConfig(configFile string, envPath string) (*AggregatorConfig, error) {
	v := configureViper("collectibles", configFile, envPath)

	setAggregatorDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config AggregatorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that cannot be defaulted
func (c *AggregatorConfig) Validate() error {
	if !domain.IsValidChain(c.OpenSea.ChainID) || c.OpenSea.ChainID.Blockchain() != domain.BlockchainEthereum {
		return fmt.Errorf("invalid opensea chain_id: %q", c.OpenSea.ChainID)
	}
	if !domain.IsValidChain(c.Solana.ChainID) || c.Solana.ChainID.Blockchain() != domain.BlockchainSolana {
		return fmt.Errorf("invalid solana chain_id: %q", c.Solana.ChainID)
	}
	if c.Fetch.PoolSize <= 0 {
		return fmt.Errorf("fetch.pool_size must be positive, got %d", c.Fetch.PoolSize)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

func setAggregatorDefaults(v *viper.Viper) {
	v.SetDefault("opensea.api_url", "https://api.opensea.io/api/v2")
	v.SetDefault("opensea.chain_id", string(domain.ChainEthereumMainnet))
	v.SetDefault("opensea.page_limit", 50)
	v.SetDefault("opensea.max_pages", 20)
	v.SetDefault("opensea.requests_per_second", 4)
	v.SetDefault("opensea.burst", 4)
	v.SetDefault("solana.rpc_url", "https://mainnet.helius-rpc.com")
	v.SetDefault("solana.chain_id", string(domain.ChainSolanaMainnet))
	v.SetDefault("solana.page_limit", 1000)
	v.SetDefault("solana.max_pages", 10)
	v.SetDefault("solana.requests_per_second", 10)
	v.SetDefault("solana.burst", 10)
	v.SetDefault("fetch.pool_size", 20)
	v.SetDefault("fetch.queue_size", 1024)
	v.SetDefault("fetch.http_timeout", "30s")
	v.SetDefault("fetch.materializer_concurrency", 8)
	v.SetDefault("media.ipfs_gateways", []string{"https://ipfs.io", "https://cloudflare-ipfs.com"})
	v.SetDefault("media.arweave_gateways", []string{"https://arweave.net"})
	v.SetDefault("retry.max_attempts", 2)
	v.SetDefault("retry.initial_interval", "1s")
	v.SetDefault("request_timeout", "2m")
	v.SetDefault("max_wallets", 50)
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("FF_COLLECTIBLES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// OpenSea
		"opensea.api_url",
		"opensea.api_key",
		"opensea.chain_id",
		"opensea.page_limit",
		"opensea.max_pages",
		"opensea.requests_per_second",
		"opensea.burst",
		// Solana
		"solana.rpc_url",
		"solana.chain_id",
		"solana.page_limit",
		"solana.max_pages",
		"solana.requests_per_second",
		"solana.burst",
		// Fetch
		"fetch.pool_size",
		"fetch.queue_size",
		"fetch.http_timeout",
		"fetch.materializer_concurrency",
		// Media
		"media.ipfs_gateways",
		"media.arweave_gateways",
		// Retry
		"retry.max_attempts",
		"retry.initial_interval",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Misc
		"blacklist_path",
		"request_timeout",
		"max_wallets",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
