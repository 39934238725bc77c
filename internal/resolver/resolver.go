package resolver

import (
	"context"
	"errors"
	"sort"

	"launchpad/internal/async"
	"launchpad/internal/cache"
	"launchpad/internal/intent"
	"launchpad/pkg/domain"
)

const (
	staticTileComponent  = "#Shell-staticTile"
	dynamicTileComponent = "#Shell-dynamicTile"
	defaultTileSize      = "1x1"
)

// Cache is the resolution cache the resolver populates.
type Cache = cache.Cache[string, domain.ResolvedTile]

// Observer is notified about every finished resolution.
type Observer interface {
	ObserveResolution(strategy string, cached bool, failure *domain.Failure)
}

// Config tunes form-factor filtering and navigation mode computation.
type Config struct {
	DeviceClass domain.DeviceClass
	InPlace     map[string]bool
}

// Resolver dispatches tiles to their strategy and records outcomes in the cache.
type Resolver struct {
	service  intent.Service
	cache    *Cache
	cfg      Config
	observer Observer
	inflight async.Group[domain.ResolutionResult]
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver registers an observer for resolution outcomes.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// New constructs a resolver writing into c.
func New(service intent.Service, c *Cache, cfg Config, opts ...Option) *Resolver {
	if cfg.DeviceClass == "" {
		cfg.DeviceClass = domain.DeviceDesktop
	}
	r := &Resolver{service: service, cache: c, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the cache the resolver writes into.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve resolves tile under key, reusing a cached success. The future
// rejects with a domain.Failure when resolution fails; the failure is cached.
func (r *Resolver) Resolve(ctx context.Context, key string, tile domain.Tile, site *domain.Site) *async.Future[domain.ResolvedTile] {
	strategy := Classify(tile)
	if cached, ok := r.cache.Value(key); ok {
		r.observe(strategy, true, nil)
		return async.Resolved(cached)
	}

	var pending *async.Future[domain.ResolvedTile]
	switch s := strategy.(type) {
	case LiteralURL:
		pending = async.Resolved(r.literalURL(tile, s))
	case BookmarkIntent:
		pending = r.byIntent(ctx, tile, s.Target)
	case LegacyURLLauncher:
		pending = r.byIntent(ctx, tile, s.Target)
	case AppReference:
		resolved, err := r.byApp(tile, s, site)
		if err != nil {
			pending = async.Rejected[domain.ResolvedTile](err)
		} else {
			pending = async.Resolved(resolved)
		}
	default:
		pending = async.Rejected[domain.ResolvedTile](domain.NewFailure(domain.SeverityError, "unknown strategy %T", strategy))
	}
	return r.record(key, strategy, pending)
}

// Retarget reapplies tile's display overrides to base, a resolution of the
// tile's new target made without overrides.
func (r *Resolver) Retarget(tile domain.Tile, base domain.ResolvedTile) domain.ResolvedTile {
	res := base.Result
	if res.ComponentLoadInfo == staticTileComponent || res.ComponentLoadInfo == dynamicTileComponent {
		res.ComponentLoadInfo = ""
	}
	return r.finish(tile, base.TileIntent, res)
}

// CatalogEntry is a resolved catalog application.
type CatalogEntry struct {
	Key   string
	AppID string
	Tile  domain.ResolvedTile
}

// ResolveCatalogApp resolves appID for catalog browsing. Successes are cached
// under the resolved intent string, failures under the application id.
func (r *Resolver) ResolveCatalogApp(appID string, site *domain.Site) *async.Future[CatalogEntry] {
	tile := domain.Tile{AppID: appID}
	strategy := AppReference{AppID: appID}
	resolved, err := r.byApp(tile, strategy, site)
	if err != nil {
		failure := asFailure(err)
		r.cache.RememberFailure(appID, failure)
		r.observe(strategy, false, &failure)
		return async.Rejected[CatalogEntry](failure)
	}
	key := resolved.TileIntent
	if cached, ok := r.cache.Value(key); ok {
		r.observe(strategy, true, nil)
		return async.Resolved(CatalogEntry{Key: key, AppID: appID, Tile: cached})
	}
	r.cache.Remember(key, resolved)
	r.observe(strategy, false, nil)
	return async.Resolved(CatalogEntry{Key: key, AppID: appID, Tile: resolved})
}

// ResolveURL resolves a bookmark URL, either an intent or a literal URL.
func (r *Resolver) ResolveURL(ctx context.Context, tile domain.Tile) *async.Future[domain.ResolvedTile] {
	strategy := Classify(tile)
	switch s := strategy.(type) {
	case LiteralURL:
		return async.Resolved(r.literalURL(tile, s))
	case BookmarkIntent:
		return r.byIntent(ctx, tile, s.Target)
	case LegacyURLLauncher:
		return r.byIntent(ctx, tile, s.Target)
	default:
		return async.Rejected[domain.ResolvedTile](domain.NewFailure(domain.SeverityError, "tile %q has no navigation target", tile.ID))
	}
}

func (r *Resolver) record(key string, strategy Strategy, pending *async.Future[domain.ResolvedTile]) *async.Future[domain.ResolvedTile] {
	return async.Go(func() (domain.ResolvedTile, error) {
		resolved, err := pending.Wait()
		if err != nil {
			failure := asFailure(err)
			r.cache.RememberFailure(key, failure)
			r.observe(strategy, false, &failure)
			return domain.ResolvedTile{}, failure
		}
		r.cache.Remember(key, resolved)
		r.observe(strategy, false, nil)
		return resolved, nil
	})
}

func (r *Resolver) literalURL(tile domain.Tile, s LiteralURL) domain.ResolvedTile {
	res := domain.ResolutionResult{
		URL:             s.URL,
		ApplicationType: domain.ApplicationTypeURL,
	}
	res.NavigationMode = NavigationMode(res, r.cfg.InPlace)
	return r.finish(tile, s.URL, res)
}

// byIntent constructs the shell hash for target and resolves it through the
// intent service. Concurrent resolutions of the same hash share one call.
func (r *Resolver) byIntent(ctx context.Context, tile domain.Tile, target domain.Target) *async.Future[domain.ResolvedTile] {
	hash := r.service.ConstructShellHash(target)
	bg := context.WithoutCancel(ctx)
	shared := r.inflight.Do(hash, func() (domain.ResolutionResult, error) {
		return r.service.ResolveTileIntent(bg, hash)
	})
	return async.Go(func() (domain.ResolvedTile, error) {
		res, err := shared.Wait()
		if err != nil {
			return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityError, "resolve %s: %v", hash, err)
		}
		if !res.DeviceTypes.Supports(r.cfg.DeviceClass) {
			return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityInfo, "intent %s is not supported on %s devices", hash, r.cfg.DeviceClass)
		}
		if res.NavigationMode == "" {
			res.NavigationMode = NavigationMode(res, r.cfg.InPlace)
		}
		return r.finish(tile, hash, res), nil
	})
}

func (r *Resolver) byApp(tile domain.Tile, s AppReference, site *domain.Site) (domain.ResolvedTile, error) {
	app, appID, ok := lookupApp(site, s)
	if !ok {
		return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityInfo, "application %q referenced by tile %q not found", firstNonEmpty(s.AppID, s.AppIDHint), tile.ID)
	}
	if app.ID == "" {
		app.ID = appID
	}
	if len(app.Inbounds) == 0 {
		return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityError, "application %q has no inbound", appID)
	}
	inbound, ok := firstNavigableInbound(app)
	if !ok {
		return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityError, "application %q has no navigable inbound", appID)
	}
	res := intent.ResultFromInbound(app, inbound)
	res.NavigationMode = NavigationMode(res, r.cfg.InPlace)
	if !res.DeviceTypes.Supports(r.cfg.DeviceClass) {
		return domain.ResolvedTile{}, domain.NewFailure(domain.SeverityInfo, "application %q is not supported on %s devices", appID, r.cfg.DeviceClass)
	}
	hash := r.service.ConstructShellHash(domain.Target{SemanticObject: inbound.SemanticObject, Action: inbound.Action})
	return r.finish(tile, hash, res), nil
}

// finish applies the tile's display overrides to res.
func (r *Resolver) finish(tile domain.Tile, tileIntent string, res domain.ResolutionResult) domain.ResolvedTile {
	res.Title = firstNonEmpty(tile.Title, res.Title)
	res.Subtitle = firstNonEmpty(tile.Subtitle, res.Subtitle)
	res.Icon = firstNonEmpty(tile.Icon, res.Icon)
	res.Info = firstNonEmpty(tile.Info, res.Info)
	res.Size = firstNonEmpty(tile.Size, res.Size, defaultTileSize)
	if tile.IndicatorDataSource != nil {
		ids := *tile.IndicatorDataSource
		res.IndicatorDataSource = &ids
	}
	if res.ComponentLoadInfo == "" {
		res.ComponentLoadInfo = staticTileComponent
		if res.IndicatorDataSource != nil {
			res.ComponentLoadInfo = dynamicTileComponent
		}
	}
	return domain.ResolvedTile{TileIntent: tileIntent, Result: res, Visible: true}
}

func (r *Resolver) observe(strategy Strategy, cached bool, failure *domain.Failure) {
	if r.observer != nil {
		r.observer.ObserveResolution(strategy.Name(), cached, failure)
	}
}

func lookupApp(site *domain.Site, s AppReference) (domain.AppDescriptor, string, bool) {
	if site == nil {
		return domain.AppDescriptor{}, "", false
	}
	for _, id := range []string{s.AppID, s.AppIDHint} {
		if id == "" {
			continue
		}
		if app, ok := site.Applications[id]; ok {
			return app, id, true
		}
	}
	return domain.AppDescriptor{}, "", false
}

// firstNavigableInbound picks the first non-hidden inbound in inbound id order.
func firstNavigableInbound(app domain.AppDescriptor) (domain.Inbound, bool) {
	ids := make([]string, 0, len(app.Inbounds))
	for id := range app.Inbounds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if in := app.Inbounds[id]; !in.HideLauncher {
			return in, true
		}
	}
	return domain.Inbound{}, false
}

func asFailure(err error) domain.Failure {
	var f domain.Failure
	if errors.As(err, &f) {
		return f
	}
	return domain.Failure{Severity: domain.SeverityError, Message: err.Error()}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
