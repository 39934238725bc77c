package launchpad

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"launchpad/internal/async"
	"launchpad/internal/cache"
	"launchpad/internal/site"
	"launchpad/pkg/domain"
)

const defaultGroupTitle = "My Home"

// EnsureLoaded returns the in-flight load or starts one. The returned future
// never rejects: load failures are logged and yield an empty group list.
func (a *Adapter) EnsureLoaded(ctx context.Context) *async.Future[[]domain.Group] {
	bg := context.WithoutCancel(ctx)
	return a.loads.Do(func() ([]domain.Group, error) {
		return a.load(bg), nil
	})
}

// Groups returns the loaded groups in display order with unresolvable tiles
// and links filtered out.
func (a *Adapter) Groups(ctx context.Context) ([]domain.Group, error) {
	return a.EnsureLoaded(ctx).Await(ctx)
}

// DefaultGroup returns the default group of the loaded document.
func (a *Adapter) DefaultGroup(ctx context.Context) (domain.Group, error) {
	groups, err := a.Groups(ctx)
	if err != nil {
		return domain.Group{}, err
	}
	for _, g := range groups {
		if g.Default {
			return g, nil
		}
	}
	return domain.Group{}, ErrGroupNotFound
}

type pendingEntry struct {
	key    string
	isLink bool
	tile   *async.Future[domain.ResolvedTile]
}

func (a *Adapter) load(ctx context.Context) []domain.Group {
	started := time.Now()
	doc, err := a.accessor.GetSite(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, ErrLoadSite.Error(), slog.String("error", err.Error()))
		a.observe(ctx, "load", started, err)
		return []domain.Group{}
	}
	if err := site.CheckVersion(doc.Version, a.maxVersion); err != nil {
		a.logger.ErrorContext(ctx, "launchpad: site schema not supported",
			slog.String("severity", string(domain.SeverityFatal)),
			slog.Bool("fatal", true),
			slog.String("version", doc.Version),
			slog.String("error", err.Error()))
		a.observe(ctx, "load", started, err)
		return []domain.Group{}
	}

	a.mu.Lock()
	ensureDefaultGroup(doc)
	groups := doc.OrderedGroups()
	for i := range groups {
		groups[i] = groups[i].Clone()
	}
	var pending []pendingEntry
	for _, g := range groups {
		for _, t := range g.Payload.Tiles {
			pending = append(pending, pendingEntry{key: t.ID, tile: a.resolver.Resolve(ctx, t.ID, t, doc)})
		}
		for _, l := range g.Payload.Links {
			pending = append(pending, pendingEntry{key: l.ID, isLink: true, tile: a.resolver.Resolve(ctx, l.ID, l, doc)})
		}
	}
	a.mu.Unlock()

	tasks := make([]*async.Future[domain.ResolvedTile], len(pending))
	for i, p := range pending {
		tasks[i] = p.tile
	}
	outcomes, _ := async.SettleAll(tasks).Wait()

	var failed []string
	for i, o := range outcomes {
		if !o.OK() {
			failed = append(failed, pending[i].key)
			continue
		}
		isLink := pending[i].isLink
		a.cache.Update(pending[i].key, func(v *domain.ResolvedTile) { v.IsLink = isLink })
	}
	a.logFailures(ctx, "groups", a.cache.FailuresFor(failed))

	for i := range groups {
		groups[i].Payload.Tiles = a.resolvedOnly(groups[i].Payload.Tiles)
		groups[i].Payload.Links = a.resolvedOnly(groups[i].Payload.Links)
	}
	a.observe(ctx, "load", started, nil)
	a.logger.DebugContext(ctx, "launchpad: groups loaded",
		slog.Int("groups", len(groups)),
		slog.Int("entries", len(pending)),
		slog.Int("failed", len(failed)))
	return groups
}

// ensureDefaultGroup synthesizes and prepends a default group when none
// exists. The repair lives in memory only until the next persisted mutation.
func ensureDefaultGroup(doc *domain.Site) domain.Group {
	doc.Normalize()
	if g, ok := doc.DefaultGroup(); ok {
		return g
	}
	g := domain.Group{
		ID:      uuid.NewString(),
		Title:   defaultGroupTitle,
		Default: true,
		Preset:  true,
		Payload: domain.GroupPayload{Tiles: []domain.Tile{}, Links: []domain.Tile{}},
	}
	doc.Groups[g.ID] = g
	doc.GroupsOrder = append([]string{g.ID}, doc.GroupsOrder...)
	return g
}

func (a *Adapter) resolvedOnly(tiles []domain.Tile) []domain.Tile {
	out := make([]domain.Tile, 0, len(tiles))
	for _, t := range tiles {
		if _, ok := a.cache.Value(t.ID); ok {
			out = append(out, t)
		}
	}
	return out
}

// logFailures emits one record per severity for a batch.
func (a *Adapter) logFailures(ctx context.Context, scope string, failures []cache.KeyedFailure[string]) {
	order, bySeverity := cache.GroupBySeverity(failures)
	for _, sev := range order {
		items := bySeverity[sev]
		details := make([]string, len(items))
		for i, f := range items {
			details[i] = f.Key + ": " + f.Failure.Message
		}
		attrs := []slog.Attr{
			slog.String("scope", scope),
			slog.String("severity", string(sev)),
			slog.Int("count", len(items)),
			slog.String("details", strings.Join(details, "; ")),
		}
		level := slog.LevelError
		switch sev {
		case domain.SeverityInfo:
			level = slog.LevelInfo
		case domain.SeverityFatal:
			attrs = append(attrs, slog.Bool("fatal", true))
		}
		a.logger.LogAttrs(ctx, level, "launchpad: tile resolution failures", attrs...)
	}
}
