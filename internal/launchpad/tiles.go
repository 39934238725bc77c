package launchpad

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"launchpad/internal/resolver"
	"launchpad/pkg/domain"
)

const defaultTileSize = "1x1"

// GroupTiles returns the tiles and links of group that resolved successfully.
func (a *Adapter) GroupTiles(group domain.Group) []domain.Tile {
	return a.resolvedOnly(group.Entries())
}

func (a *Adapter) resolved(tile domain.Tile) (domain.ResolvedTile, bool) {
	return a.cache.Value(tile.ID)
}

// TileTitle returns the resolved title, or the tile's own when unresolved.
func (a *Adapter) TileTitle(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok {
		return r.Result.Title
	}
	return tile.Title
}

// TileSubtitle returns the resolved subtitle, or the tile's own when unresolved.
func (a *Adapter) TileSubtitle(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok {
		return r.Result.Subtitle
	}
	return tile.Subtitle
}

// TileIcon returns the resolved icon, or the tile's own when unresolved.
func (a *Adapter) TileIcon(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok {
		return r.Result.Icon
	}
	return tile.Icon
}

// TileInfo returns the resolved info text, or the tile's own when unresolved.
func (a *Adapter) TileInfo(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok {
		return r.Result.Info
	}
	return tile.Info
}

// TileTarget returns the navigation target: the resolved intent or URL.
func (a *Adapter) TileTarget(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok && r.TileIntent != "" {
		return r.TileIntent
	}
	if tile.Target != nil {
		return a.service.ConstructShellHash(*tile.Target)
	}
	return tile.URL
}

// TileType reports whether the tile is rendered as a tile or a link.
func (a *Adapter) TileType(tile domain.Tile) domain.TileType {
	if r, ok := a.resolved(tile); ok && r.IsLink {
		return domain.TileTypeLink
	}
	return domain.TileTypeTile
}

// TileID returns the tile's stable id.
func (a *Adapter) TileID(tile domain.Tile) string { return tile.ID }

// TileSize returns the resolved size, then the tile's, then "1x1".
func (a *Adapter) TileSize(tile domain.Tile) string {
	if r, ok := a.resolved(tile); ok && r.Result.Size != "" {
		return r.Result.Size
	}
	if tile.Size != "" {
		return tile.Size
	}
	return defaultTileSize
}

// IsTileIntentSupported reports whether the tile resolved on this device.
func (a *Adapter) IsTileIntentSupported(tile domain.Tile) bool {
	_, ok := a.resolved(tile)
	return ok
}

// RefreshTile asks the tile's instantiated view, if any, to refresh.
func (a *Adapter) RefreshTile(tile domain.Tile) {
	if r, ok := a.resolved(tile); ok && r.View != nil {
		r.View.Refresh()
	}
}

// SetTileVisible records the visibility and forwards it to the view.
func (a *Adapter) SetTileVisible(tile domain.Tile, visible bool) {
	var view domain.View
	a.cache.Update(tile.ID, func(r *domain.ResolvedTile) {
		r.Visible = visible
		view = r.View
	})
	if view != nil {
		view.SetVisible(visible)
	}
}

// TileView returns the view of a resolved tile, creating it through the
// configured factory on first use.
func (a *Adapter) TileView(tile domain.Tile) (domain.View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.resolved(tile)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTileNotResolved, tile.ID)
	}
	if r.View != nil {
		return r.View, nil
	}
	if a.views == nil {
		return nil, ErrNoViewFactory
	}
	view := a.views.NewView(r)
	a.cache.Update(tile.ID, func(r *domain.ResolvedTile) { r.View = view })
	return view, nil
}

// AddTile appends a catalog application to group, or to the default group
// when group is nil. The resolution is cached before the document is saved.
func (a *Adapter) AddTile(ctx context.Context, entry resolver.CatalogEntry, group *domain.Group) (domain.Tile, error) {
	if entry.AppID == "" {
		return domain.Tile{}, invalid("catalog tile has no application id")
	}
	if group != nil && group.ID == "" {
		return domain.Tile{}, invalid("group id required")
	}
	tile := domain.Tile{ID: uuid.NewString(), AppID: entry.AppID}
	err := a.mutate(ctx, "add_tile", func(doc *domain.Site) (bool, any, error) {
		target, err := targetGroup(doc, group)
		if err != nil {
			return false, nil, err
		}
		resolved := entry.Tile
		resolved.IsLink = false
		resolved.View = nil
		a.cache.Remember(tile.ID, resolved)
		target.Payload.Tiles = append(target.Payload.Tiles, tile)
		doc.Groups[target.ID] = target
		return true, nil, nil
	})
	if err != nil {
		return domain.Tile{}, err
	}
	return tile, nil
}

// targetGroup returns the group named by group, or the default group
// (synthesized when missing) for nil.
func targetGroup(doc *domain.Site, group *domain.Group) (domain.Group, error) {
	if group == nil {
		return ensureDefaultGroup(doc), nil
	}
	return lookupGroup(doc, group.ID)
}

// RemoveTile removes tile from group. index addresses the combined tile and
// link list; when it does not point at the tile the tile is removed by id.
func (a *Adapter) RemoveTile(ctx context.Context, group domain.Group, tile domain.Tile, index int) error {
	if group.ID == "" || tile.ID == "" {
		return invalid("group and tile ids required")
	}
	return a.mutate(ctx, "remove_tile", func(doc *domain.Site) (bool, any, error) {
		g, err := lookupGroup(doc, group.ID)
		if err != nil {
			return false, nil, err
		}
		list, offset := &g.Payload.Tiles, 0
		if containsTile(g.Payload.Links, tile.ID) {
			list, offset = &g.Payload.Links, len(g.Payload.Tiles)
		}
		if !removeAt(list, index-offset, tile.ID) {
			return false, nil, fmt.Errorf("%w: %s", ErrTileNotFound, tile.ID)
		}
		doc.Groups[g.ID] = g
		return true, nil, nil
	})
}

// MoveTile moves tile from sourceIndex in sourceGroup to targetIndex in
// targetGroup, optionally changing its type. Indices address the combined
// tile and link list of each group. An empty newType keeps the current type.
func (a *Adapter) MoveTile(ctx context.Context, tile domain.Tile, sourceIndex, targetIndex int, sourceGroup, targetGroup domain.Group, newType domain.TileType) error {
	if tile.ID == "" || sourceGroup.ID == "" || targetGroup.ID == "" {
		return invalid("tile and group ids required")
	}
	if sourceIndex < 0 || targetIndex < 0 {
		return invalid("tile indices must not be negative")
	}
	if newType != "" && newType != domain.TileTypeTile && newType != domain.TileTypeLink {
		return invalid("unknown tile type %q", newType)
	}
	return a.mutate(ctx, "move_tile", func(doc *domain.Site) (bool, any, error) {
		src, err := lookupGroup(doc, sourceGroup.ID)
		if err != nil {
			return false, nil, err
		}
		currentType := domain.TileTypeTile
		if containsTile(src.Payload.Links, tile.ID) {
			currentType = domain.TileTypeLink
		} else if !containsTile(src.Payload.Tiles, tile.ID) {
			return false, nil, fmt.Errorf("%w: %s", ErrTileNotFound, tile.ID)
		}
		if newType == "" {
			newType = currentType
		}
		if sourceGroup.ID == targetGroup.ID && sourceIndex == targetIndex && newType == currentType {
			return false, nil, nil
		}

		var moved domain.Tile
		if currentType == domain.TileTypeLink {
			moved = takeTile(&src.Payload.Links, sourceIndex-len(src.Payload.Tiles), tile.ID)
		} else {
			moved = takeTile(&src.Payload.Tiles, sourceIndex, tile.ID)
		}
		doc.Groups[src.ID] = src

		dst, err := lookupGroup(doc, targetGroup.ID)
		if err != nil {
			return false, nil, err
		}
		if newType == domain.TileTypeLink {
			dst.Payload.Links = insertTile(dst.Payload.Links, targetIndex-len(dst.Payload.Tiles), moved)
		} else {
			dst.Payload.Tiles = insertTile(dst.Payload.Tiles, targetIndex, moved)
		}
		doc.Groups[dst.ID] = dst

		isLink := newType == domain.TileTypeLink
		a.cache.Update(tile.ID, func(r *domain.ResolvedTile) { r.IsLink = isLink })
		return true, nil, nil
	})
}

func containsTile(tiles []domain.Tile, id string) bool {
	return slices.ContainsFunc(tiles, func(t domain.Tile) bool { return t.ID == id })
}

// removeAt removes the tile at index when it carries id, otherwise every
// tile with id. It reports whether anything was removed.
func removeAt(tiles *[]domain.Tile, index int, id string) bool {
	if index >= 0 && index < len(*tiles) && (*tiles)[index].ID == id {
		*tiles = slices.Delete(*tiles, index, index+1)
		return true
	}
	before := len(*tiles)
	*tiles = slices.DeleteFunc(*tiles, func(t domain.Tile) bool { return t.ID == id })
	return len(*tiles) != before
}

// takeTile removes and returns the tile with id, preferring index.
func takeTile(tiles *[]domain.Tile, index int, id string) domain.Tile {
	if index < 0 || index >= len(*tiles) || (*tiles)[index].ID != id {
		index = slices.IndexFunc(*tiles, func(t domain.Tile) bool { return t.ID == id })
	}
	t := (*tiles)[index]
	*tiles = slices.Delete(*tiles, index, index+1)
	return t
}

func insertTile(tiles []domain.Tile, index int, tile domain.Tile) []domain.Tile {
	index = max(0, min(index, len(tiles)))
	return slices.Insert(tiles, index, tile)
}
