package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores the backend settings. It is read once at process start and
// treated as immutable for the process lifetime.
type Config struct {
	Port int

	// Chain
	RPCURL          string
	ChainID         int64
	ChainName       string
	PrivateKey      string
	ContractAddress string

	// Providers. An absent key disables that provider, never errors.
	AviationStackKey string
	AviationEdgeKey  string

	// ProviderTimeout bounds each provider call. Timeout is handled the same
	// as any other provider failure.
	ProviderTimeout time.Duration

	Retry Retry
}

// Retry describes the per-provider retry behaviour for transient failures.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SubmissionEnabled reports whether the chain write path is configured.
// Both the signing key and the contract address are required.
func (c *Config) SubmissionEnabled() bool {
	return c.PrivateKey != "" && c.ContractAddress != ""
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := fromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

// fromEnv builds a Config from the given environment lookup; separated from
// Load so tests can run it without touching process flags.
func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:             defaultPort,
		RPCURL:           defaultRPCURL,
		ChainID:          defaultChainID,
		ChainName:        defaultChainName,
		PrivateKey:       getenv("PRIVATE_KEY"),
		ContractAddress:  getenv("CONTRACT_ADDRESS"),
		AviationStackKey: getenv("AVIATIONSTACK_API_KEY"),
		AviationEdgeKey:  getenv("AVIATION_EDGE_API_KEY"),
		ProviderTimeout:  defaultProviderTimeout,
		Retry:            DefaultRetry(),
	}

	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := getenv("MONAD_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := getenv("MONAD_CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MONAD_CHAIN_ID %q: %w", v, err)
		}
		cfg.ChainID = id
	}
	if v := getenv("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT %q", v)
		}
		cfg.ProviderTimeout = d
	}
	return cfg, nil
}
