package config

import "time"

const (
	defaultPort      = 4500
	defaultRPCURL    = "https://testnet-rpc.monad.xyz"
	defaultChainID   = 10143
	defaultChainName = "Monad Testnet"

	defaultProviderTimeout = 10 * time.Second
)

var defaultRetry = Retry{
	MaxAttempts: 3,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// DefaultRetry returns the default provider retry settings.
func DefaultRetry() Retry {
	return defaultRetry
}
