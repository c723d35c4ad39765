package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/delaydex/delaydex-backend/internal/clock"
	"github.com/delaydex/delaydex-backend/internal/config"
	chaingw "github.com/delaydex/delaydex-backend/internal/gateway/chain"
	"github.com/delaydex/delaydex-backend/internal/http/handlers"
	"github.com/delaydex/delaydex-backend/internal/http/router"
	"github.com/delaydex/delaydex-backend/internal/logx"
	"github.com/delaydex/delaydex-backend/internal/metrics"
	"github.com/delaydex/delaydex-backend/internal/provider"
	"github.com/delaydex/delaydex-backend/internal/service/resolver"
)

var (
	providerRequests = metrics.NewProviderRequestsTotal()
	providerFailures = metrics.NewProviderFailuresTotal()
	providerRetries  = metrics.NewProviderRetriesTotal()
	submissions      = metrics.NewSubmissionsTotal()
)

func init() {
	prometheus.MustRegister(providerRequests, providerFailures, providerRetries, submissions)
}

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dialRPC   func(string) (*ethclient.Client, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dialRPC:   ethclient.Dial,
		logFatalf: log.Fatalf,
	}
}

// WithDialRPC sets the chain RPC dial function
func (b *ContainerBuilder) WithDialRPC(fn func(string) (*ethclient.Client, error)) *ContainerBuilder {
	if fn != nil {
		b.dialRPC = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerResolver(container, b.dialRPC); err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return fmt.Errorf("provide %T: %w", p, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		clock.NewSystem,
		config.Load,
	)
}

func registerResolver(container *dig.Container, dialRPC func(string) (*ethclient.Client, error)) error {
	newCascade := func(cfg *config.Config, logger logx.Logger) *provider.Cascade {
		client := &http.Client{Timeout: cfg.ProviderTimeout + time.Second}
		retry := provider.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		}
		// Priority order mirrors reliability: free live data first, keyed
		// schedule APIs after.
		providers := []provider.Provider{
			provider.NewRetrying(provider.NewOpenSky(client, ""), logger, providerRetries, retry),
			provider.NewRetrying(provider.NewAviationStack(client, "", cfg.AviationStackKey), logger, providerRetries, retry),
			provider.NewRetrying(provider.NewAviationEdge(client, "", cfg.AviationEdgeKey), logger, providerRetries, retry),
		}
		return provider.NewCascade(providers, logger, cfg.ProviderTimeout, providerRequests, providerFailures)
	}

	newWriter := func(cfg *config.Config, logger logx.Logger) (*chaingw.Writer, error) {
		if !cfg.SubmissionEnabled() {
			logger.Warn("signing key or contract address unset, chain submission disabled")
			return nil, nil
		}
		client, err := dialRPC(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial chain rpc: %w", err)
		}
		return chaingw.NewWriter(client, cfg.PrivateKey, cfg.ContractAddress, cfg.ChainID, logger)
	}

	newResolver := func(cfg *config.Config, cascade *provider.Cascade, writer *chaingw.Writer, clk clock.Clock, logger logx.Logger) *resolver.Resolver {
		opts := []resolver.Option{resolver.WithSubmissionsCounter(submissions)}
		if writer != nil {
			opts = append(opts, resolver.WithWriter(writer))
		}
		return resolver.New(cascade, clk, logger, cfg.ChainName, opts...)
	}

	return provideAll(container, newCascade, newWriter, newResolver)
}

func registerHTTP(container *dig.Container) error {
	newHandlers := func(r *resolver.Resolver, cfg *config.Config, clk clock.Clock, logger logx.Logger) *handlers.Handlers {
		return handlers.New(r, clk, logger, cfg.ChainName)
	}
	newRouter := func(h *handlers.Handlers, logger logx.Logger) http.Handler {
		return router.New(h, logger)
	}
	newServer := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      90 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container, newHandlers, newRouter, newServer)
}
