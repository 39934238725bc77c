package launchpad

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"launchpad/internal/intent"
	"launchpad/pkg/domain"
)

// Bookmark describes a tile created from a URL or shell hash.
type Bookmark struct {
	URL                 string                      `json:"url"`
	Title               string                      `json:"title"`
	Subtitle            string                      `json:"subTitle,omitempty"`
	Info                string                      `json:"info,omitempty"`
	Icon                string                      `json:"icon,omitempty"`
	IndicatorDataSource *domain.IndicatorDataSource `json:"indicatorDataSource,omitempty"`
}

// BookmarkUpdate lists the bookmark fields to change; nil fields are kept.
type BookmarkUpdate struct {
	URL                 *string                     `json:"url,omitempty"`
	Title               *string                     `json:"title,omitempty"`
	Subtitle            *string                     `json:"subTitle,omitempty"`
	Info                *string                     `json:"info,omitempty"`
	Icon                *string                     `json:"icon,omitempty"`
	IndicatorDataSource *domain.IndicatorDataSource `json:"indicatorDataSource,omitempty"`
}

func (u BookmarkUpdate) empty() bool {
	return u.URL == nil && u.Title == nil && u.Subtitle == nil && u.Info == nil && u.Icon == nil && u.IndicatorDataSource == nil
}

func applyReference(tile *domain.Tile, ref intent.Reference) {
	tile.Target, tile.URL = nil, ""
	if ref.Target != nil {
		target := ref.Target.Clone()
		tile.Target = &target
		return
	}
	tile.URL = ref.URL
}

// AddBookmark resolves b.URL, caches the resolution and appends a bookmark
// tile to group, or to the default group when group is nil.
func (a *Adapter) AddBookmark(ctx context.Context, b Bookmark, group *domain.Group) (domain.Tile, error) {
	if strings.TrimSpace(b.URL) == "" {
		return domain.Tile{}, invalid("bookmark url required")
	}
	if strings.TrimSpace(b.Title) == "" {
		return domain.Tile{}, invalid("bookmark title required")
	}
	if group != nil && group.ID == "" {
		return domain.Tile{}, invalid("group id required")
	}
	tile := domain.Tile{
		ID:         uuid.NewString(),
		IsBookmark: true,
		Title:      b.Title,
		Subtitle:   b.Subtitle,
		Info:       b.Info,
		Icon:       b.Icon,
	}
	if b.IndicatorDataSource != nil {
		ids := *b.IndicatorDataSource
		tile.IndicatorDataSource = &ids
	}
	applyReference(&tile, intent.ReferenceFor(b.URL))

	resolved, err := a.resolver.ResolveURL(ctx, tile).Await(ctx)
	if err != nil {
		return domain.Tile{}, fmt.Errorf("add_bookmark: resolve %s: %w", b.URL, err)
	}
	err = a.mutate(ctx, "add_bookmark", func(doc *domain.Site) (bool, any, error) {
		target, err := targetGroup(doc, group)
		if err != nil {
			return false, nil, err
		}
		a.cache.Remember(tile.ID, resolved)
		target.Payload.Tiles = append(target.Payload.Tiles, tile)
		doc.Groups[target.ID] = target
		return true, nil, nil
	})
	if err != nil {
		return domain.Tile{}, err
	}
	return tile.Clone(), nil
}

// visitBookmarks calls fn for every tile in the tile lists of doc that
// denotes the same bookmark as url. Locked groups are skipped unless
// includeLocked is set.
func visitBookmarks(doc *domain.Site, url string, includeLocked bool, fn func(g *domain.Group, i int)) {
	ref := intent.ReferenceFor(url)
	for _, ordered := range doc.OrderedGroups() {
		if ordered.Locked && !includeLocked {
			continue
		}
		g := doc.Groups[ordered.ID]
		for i := range g.Payload.Tiles {
			if ref.Matches(g.Payload.Tiles[i]) {
				fn(&g, i)
			}
		}
		doc.Groups[g.ID] = g
	}
}

// CountBookmarks counts the bookmarks for url in unlocked groups.
func (a *Adapter) CountBookmarks(ctx context.Context, url string) (int, error) {
	if strings.TrimSpace(url) == "" {
		return 0, invalid("bookmark url required")
	}
	count := 0
	err := a.mutate(ctx, "count_bookmarks", func(doc *domain.Site) (bool, any, error) {
		visitBookmarks(doc, url, false, func(*domain.Group, int) { count++ })
		return false, nil, nil
	})
	return count, err
}

// UpdateBookmarks applies upd to every bookmark for url in unlocked groups,
// notifies instantiated views and persists once. It returns the number of
// bookmarks changed.
func (a *Adapter) UpdateBookmarks(ctx context.Context, url string, upd BookmarkUpdate) (int, error) {
	if strings.TrimSpace(url) == "" {
		return 0, invalid("bookmark url required")
	}
	if upd.empty() {
		return 0, invalid("bookmark update has no fields")
	}
	if upd.URL != nil && strings.TrimSpace(*upd.URL) == "" {
		return 0, invalid("bookmark url must not be empty")
	}
	var retarget *domain.ResolvedTile
	if upd.URL != nil {
		bare := domain.Tile{IsBookmark: true}
		applyReference(&bare, intent.ReferenceFor(*upd.URL))
		base, err := a.resolver.ResolveURL(ctx, bare).Await(ctx)
		if err != nil {
			return 0, fmt.Errorf("update_bookmarks: resolve %s: %w", *upd.URL, err)
		}
		retarget = &base
	}
	type notice struct {
		view  domain.View
		props domain.TileProperties
	}
	var notices []notice
	count := 0
	err := a.mutate(ctx, "update_bookmarks", func(doc *domain.Site) (bool, any, error) {
		visitBookmarks(doc, url, false, func(g *domain.Group, i int) {
			tile := &g.Payload.Tiles[i]
			updateTile(tile, upd)
			count++
			if retarget != nil {
				if r := a.rememberRetarget(*tile, *retarget); r.View != nil {
					notices = append(notices, notice{view: r.View, props: r.Properties()})
				}
				return
			}
			a.cache.Update(tile.ID, func(r *domain.ResolvedTile) {
				updateResult(r, upd)
				if r.View != nil {
					notices = append(notices, notice{view: r.View, props: r.Properties()})
				}
			})
		})
		return count > 0, nil, nil
	})
	if err != nil {
		return 0, err
	}
	for _, n := range notices {
		n.view.SetProperties(n.props)
	}
	return count, nil
}

// rememberRetarget caches the resolution of a retargeted bookmark. The view,
// link mode and visibility of the previous entry carry over.
func (a *Adapter) rememberRetarget(tile domain.Tile, base domain.ResolvedTile) domain.ResolvedTile {
	fresh := a.resolver.Retarget(tile, base)
	if prev, ok := a.cache.Value(tile.ID); ok {
		fresh.View, fresh.IsLink, fresh.Visible = prev.View, prev.IsLink, prev.Visible
	}
	a.cache.Remember(tile.ID, fresh)
	return fresh
}

func updateTile(tile *domain.Tile, upd BookmarkUpdate) {
	if upd.URL != nil {
		applyReference(tile, intent.ReferenceFor(*upd.URL))
	}
	if upd.Title != nil {
		tile.Title = *upd.Title
	}
	if upd.Subtitle != nil {
		tile.Subtitle = *upd.Subtitle
	}
	if upd.Info != nil {
		tile.Info = *upd.Info
	}
	if upd.Icon != nil {
		tile.Icon = *upd.Icon
	}
	if upd.IndicatorDataSource != nil {
		ids := *upd.IndicatorDataSource
		tile.IndicatorDataSource = &ids
	}
}

func updateResult(r *domain.ResolvedTile, upd BookmarkUpdate) {
	if upd.Title != nil {
		r.Result.Title = *upd.Title
	}
	if upd.Subtitle != nil {
		r.Result.Subtitle = *upd.Subtitle
	}
	if upd.Info != nil {
		r.Result.Info = *upd.Info
	}
	if upd.Icon != nil {
		r.Result.Icon = *upd.Icon
	}
	if upd.IndicatorDataSource != nil {
		ids := *upd.IndicatorDataSource
		r.Result.IndicatorDataSource = &ids
	}
}

// DeleteBookmarks removes every bookmark for url and returns how many were
// removed. Unlike CountBookmarks and UpdateBookmarks it also visits locked
// groups.
func (a *Adapter) DeleteBookmarks(ctx context.Context, url string) (int, error) {
	if strings.TrimSpace(url) == "" {
		return 0, invalid("bookmark url required")
	}
	count := 0
	err := a.mutate(ctx, "delete_bookmarks", func(doc *domain.Site) (bool, any, error) {
		ref := intent.ReferenceFor(url)
		for id, g := range doc.Groups {
			before := len(g.Payload.Tiles)
			g.Payload.Tiles = slices.DeleteFunc(g.Payload.Tiles, ref.Matches)
			if removed := before - len(g.Payload.Tiles); removed > 0 {
				count += removed
				doc.Groups[id] = g
			}
		}
		return count > 0, nil, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
