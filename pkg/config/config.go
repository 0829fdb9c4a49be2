package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config represents the swap API server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OneInch  OneInchConfig  `mapstructure:"oneinch"`
	Swap     SwapConfig     `mapstructure:"swap"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Treasury TreasuryConfig `mapstructure:"treasury"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// OneInchConfig contains 1inch aggregator API settings
type OneInchConfig struct {
	APIBaseURL  string `mapstructure:"api_base_url"`
	ChainID     int64  `mapstructure:"chain_id"`
	APIKey      string `mapstructure:"api_key"`
	UseMockMode bool   `mapstructure:"use_mock_mode"`
}

// SwapConfig contains swap pipeline settings
type SwapConfig struct {
	DefaultProvider       string        `mapstructure:"default_provider"`
	PlatformFeePercentage string        `mapstructure:"platform_fee_percentage"`
	QuoteTTL              time.Duration `mapstructure:"quote_ttl"`
	FeeQueueSize          int           `mapstructure:"fee_queue_size"`
}

// WalletConfig contains the on-chain balance provider settings
type WalletConfig struct {
	RPCURL      string        `mapstructure:"rpc_url"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// AuthConfig contains JWT settings
type AuthConfig struct {
	SigningKey string `mapstructure:"signing_key"`
	Issuer     string `mapstructure:"issuer"`
}

// TreasuryConfig contains the platform fee treasury settings
type TreasuryConfig struct {
	WalletAddress string `mapstructure:"wallet_address"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "coinpay")

	// 1inch defaults (Polygon Amoy testnet)
	viper.SetDefault("oneinch.api_base_url", "https://api.1inch.io/v5.0")
	viper.SetDefault("oneinch.chain_id", 80002)
	viper.SetDefault("oneinch.use_mock_mode", false)

	// Swap defaults
	viper.SetDefault("swap.default_provider", "1inch")
	viper.SetDefault("swap.platform_fee_percentage", "0.5")
	viper.SetDefault("swap.quote_ttl", "30s")
	viper.SetDefault("swap.fee_queue_size", 256)

	// Wallet defaults
	viper.SetDefault("wallet.call_timeout", "10s")

	// Treasury defaults
	viper.SetDefault("treasury.wallet_address", "0xTreasuryWallet")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.OneInch.APIBaseURL == "" {
		return fmt.Errorf("oneinch.api_base_url is required")
	}
	if config.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if !config.OneInch.UseMockMode && config.Wallet.RPCURL == "" {
		return fmt.Errorf("wallet.rpc_url is required unless oneinch.use_mock_mode is set")
	}
	if _, err := config.Swap.FeePercentage(); err != nil {
		return err
	}
	return nil
}

// FeePercentage parses the configured platform fee percentage
func (c *SwapConfig) FeePercentage() (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(c.PlatformFeePercentage)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid swap.platform_fee_percentage %q: %w", c.PlatformFeePercentage, err)
	}
	if pct.IsNegative() {
		return decimal.Zero, fmt.Errorf("swap.platform_fee_percentage must not be negative")
	}
	return pct, nil
}
