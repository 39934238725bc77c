package launchpad

import (
	"context"
	"fmt"
	"sort"
	"time"

	"launchpad/internal/async"
	"launchpad/internal/resolver"
	"launchpad/pkg/domain"
)

// Catalogs returns the catalogs of the site sorted by id.
func (a *Adapter) Catalogs(ctx context.Context) ([]domain.Catalog, error) {
	doc, err := a.accessor.GetSite(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSite, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Catalog, 0, len(doc.Catalogs))
	for id, c := range doc.Catalogs {
		if c.ID == "" {
			c.ID = id
		}
		c.Payload.AppIDs = append([]string(nil), c.Payload.AppIDs...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CatalogTiles resolves the applications of catalog. Applications that fail
// to resolve are left out and logged once per severity.
func (a *Adapter) CatalogTiles(ctx context.Context, catalog domain.Catalog) ([]resolver.CatalogEntry, error) {
	started := time.Now()
	doc, err := a.accessor.GetSite(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLoadSite, err)
		a.observe(ctx, "catalog_tiles", started, err)
		return nil, err
	}
	a.mu.Lock()
	appIDs := catalog.Payload.AppIDs
	if current, ok := doc.Catalogs[catalog.ID]; ok {
		appIDs = current.Payload.AppIDs
	}
	tasks := make([]*async.Future[resolver.CatalogEntry], len(appIDs))
	for i, appID := range appIDs {
		tasks[i] = a.resolver.ResolveCatalogApp(appID, doc)
	}
	a.mu.Unlock()

	outcomes, _ := async.SettleAll(tasks).Wait()
	var failed []string
	for i, o := range outcomes {
		if !o.OK() {
			failed = append(failed, appIDs[i])
		}
	}
	a.logFailures(ctx, "catalog:"+catalog.ID, a.cache.FailuresFor(failed))
	a.observe(ctx, "catalog_tiles", started, nil)
	return async.Values(outcomes), nil
}
