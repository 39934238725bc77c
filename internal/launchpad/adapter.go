// Package launchpad is the engine behind the launchpad page: it loads the site
// document through a site.Accessor, resolves every group's tiles into a shared
// resolution cache and applies group, tile and bookmark mutations.
package launchpad

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"launchpad/internal/async"
	"launchpad/internal/cache"
	"launchpad/internal/intent"
	"launchpad/internal/resolver"
	"launchpad/internal/site"
	"launchpad/pkg/domain"
)

// MetricsRecorder receives one observation per adapter operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// ViewFactory instantiates the live UI component for a resolved tile.
type ViewFactory interface {
	NewView(tile domain.ResolvedTile) domain.View
}

// ViewFactoryFunc adapts a function to ViewFactory.
type ViewFactoryFunc func(tile domain.ResolvedTile) domain.View

// NewView implements ViewFactory.
func (f ViewFactoryFunc) NewView(tile domain.ResolvedTile) domain.View { return f(tile) }

// Adapter owns the resolution cache and the in-flight load slot for one site.
type Adapter struct {
	accessor   site.Accessor
	service    intent.Service
	cache      *resolver.Cache
	resolver   *resolver.Resolver
	resolveCfg resolver.Config
	logger     *slog.Logger
	metrics    MetricsRecorder
	views      ViewFactory
	maxVersion string

	loads async.SingleFlight[[]domain.Group]

	// mu guards the in-memory document between fetch and persist. It does not
	// order concurrent mutations: the last save wins.
	mu sync.Mutex
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics registers a recorder. When it also implements
// resolver.Observer it receives every tile resolution.
func WithMetrics(m MetricsRecorder) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithViewFactory sets the factory used by TileView.
func WithViewFactory(f ViewFactory) Option {
	return func(a *Adapter) { a.views = f }
}

// WithCache injects the resolution cache.
func WithCache(c *resolver.Cache) Option {
	return func(a *Adapter) {
		if c != nil {
			a.cache = c
		}
	}
}

// WithResolverConfig sets the device class and in-place navigation table.
func WithResolverConfig(cfg resolver.Config) Option {
	return func(a *Adapter) { a.resolveCfg = cfg }
}

// WithMaxVersion sets the newest accepted site schema version.
func WithMaxVersion(v string) Option {
	return func(a *Adapter) {
		if v != "" {
			a.maxVersion = v
		}
	}
}

// New constructs an adapter over accessor and service.
func New(accessor site.Accessor, service intent.Service, opts ...Option) *Adapter {
	a := &Adapter{
		accessor:   accessor,
		service:    service,
		cache:      cache.New[string, domain.ResolvedTile](),
		logger:     slog.Default(),
		maxVersion: site.DefaultMaxVersion,
	}
	for _, opt := range opts {
		opt(a)
	}
	var resolverOpts []resolver.Option
	if obs, ok := a.metrics.(resolver.Observer); ok {
		resolverOpts = append(resolverOpts, resolver.WithObserver(obs))
	}
	a.resolver = resolver.New(service, a.cache, a.resolveCfg, resolverOpts...)
	return a
}

// Cache exposes the resolution cache.
func (a *Adapter) Cache() *resolver.Cache { return a.cache }

func (a *Adapter) observe(ctx context.Context, op string, started time.Time, err error) {
	if a.metrics != nil {
		a.metrics.Observe(ctx, op, err == nil, time.Since(started))
	}
}
