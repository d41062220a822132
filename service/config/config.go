package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment
// variables. All required fields are validated at startup to ensure
// fail-fast behavior.
type Config struct {
	// Logging
	LogLevel string

	// Solana configuration
	SolanaRPCURL string

	// Token configuration
	TokenMintAddress string
	TokenDecimals    int

	// Recipient rent sponsorship: when true, the sender funds a missing
	// recipient token account.
	FundRecipient bool

	// Backend persistence collaborator
	BackendURL   string
	SessionToken string

	// Signer providers, in discovery precedence order. Empty URLs mean
	// the provider is unavailable; the keypair path is the generic
	// fallback.
	PhantomSignerURL  string
	SolflareSignerURL string
	KeypairPath       string

	// Local persistence
	StorePath string

	// NATS configuration (optional; empty disables event publishing)
	NATSURL string

	// Confirmation tracking
	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
}

// Load reads configuration from environment variables and validates all
// required fields. Returns an error if any required configuration is
// missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	cfg.TokenMintAddress = os.Getenv("TOKEN_MINT_ADDRESS")
	if cfg.TokenMintAddress == "" {
		errs = append(errs, fmt.Errorf("TOKEN_MINT_ADDRESS is required"))
	}

	decimals, err := parseInt("TOKEN_DECIMALS", 6)
	if err != nil {
		errs = append(errs, err)
	} else if decimals < 0 || decimals > 18 {
		errs = append(errs, fmt.Errorf("TOKEN_DECIMALS must be between 0 and 18, got %d", decimals))
	} else {
		cfg.TokenDecimals = decimals
	}

	fundRecipient, err := parseBool("FUND_RECIPIENT", true)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.FundRecipient = fundRecipient
	}

	cfg.BackendURL = os.Getenv("BACKEND_URL")
	if cfg.BackendURL == "" {
		errs = append(errs, fmt.Errorf("BACKEND_URL is required"))
	}
	cfg.SessionToken = os.Getenv("SESSION_TOKEN")

	cfg.PhantomSignerURL = os.Getenv("PHANTOM_SIGNER_URL")
	cfg.SolflareSignerURL = os.Getenv("SOLFLARE_SIGNER_URL")
	cfg.KeypairPath = os.Getenv("KEYPAIR_PATH")

	cfg.StorePath = getEnvOrDefault("STORE_PATH", "solsend.db")

	cfg.NATSURL = os.Getenv("NATS_URL")

	confirmTimeout, err := parseDuration("CONFIRM_TIMEOUT", "60s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmTimeout = confirmTimeout
	}

	pollInterval, err := parseDuration("CONFIRM_POLL_INTERVAL", "2s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmPollInterval = pollInterval
	}

	if cfg.ConfirmPollInterval > cfg.ConfirmTimeout {
		errs = append(errs, fmt.Errorf("CONFIRM_POLL_INTERVAL (%v) cannot be greater than CONFIRM_TIMEOUT (%v)",
			cfg.ConfirmPollInterval, cfg.ConfirmTimeout))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for startup paths where misconfiguration should halt the process.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.TokenMintAddress == "" {
		errs = append(errs, fmt.Errorf("TokenMintAddress is required"))
	}

	if c.TokenDecimals < 0 || c.TokenDecimals > 18 {
		errs = append(errs, fmt.Errorf("TokenDecimals must be between 0 and 18"))
	}

	if c.BackendURL == "" {
		errs = append(errs, fmt.Errorf("BackendURL is required"))
	}

	if c.ConfirmTimeout < time.Second {
		errs = append(errs, fmt.Errorf("ConfirmTimeout must be at least 1 second"))
	}

	if c.ConfirmPollInterval > c.ConfirmTimeout {
		errs = append(errs, fmt.Errorf("ConfirmPollInterval cannot be greater than ConfirmTimeout"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// parseBool parses a boolean from an environment variable or uses a default.
func parseBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, value, err)
	}
	return result, nil
}
