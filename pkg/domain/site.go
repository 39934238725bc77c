// Package domain defines the launchpad site document and the values exchanged
// between the resolution cache, the intent resolver and the mutation engine.
package domain

import "sort"

// Site is the backing document describing groups, tiles, catalogs and applications.
type Site struct {
	Version      string                   `json:"_version" yaml:"_version"`
	GroupsOrder  []string                 `json:"groupsOrder" yaml:"groupsOrder"`
	Groups       map[string]Group         `json:"groups" yaml:"groups"`
	Applications map[string]AppDescriptor `json:"applications" yaml:"applications"`
	Catalogs     map[string]Catalog       `json:"catalogs" yaml:"catalogs"`
}

// Group is an ordered container of tiles and links on the launchpad.
type Group struct {
	ID      string       `json:"id" yaml:"id"`
	Title   string       `json:"title" yaml:"title"`
	Hidden  bool         `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Locked  bool         `json:"locked,omitempty" yaml:"locked,omitempty"`
	Preset  bool         `json:"preset,omitempty" yaml:"preset,omitempty"`
	Default bool         `json:"default,omitempty" yaml:"default,omitempty"`
	Payload GroupPayload `json:"payload" yaml:"payload"`
}

// GroupPayload holds the explicitly ordered tile and link lists of a group.
type GroupPayload struct {
	Tiles []Tile `json:"tiles" yaml:"tiles"`
	Links []Tile `json:"links" yaml:"links"`
}

// Catalog is a named collection of application references.
type Catalog struct {
	ID      string         `json:"id" yaml:"id"`
	Title   string         `json:"title" yaml:"title"`
	Payload CatalogPayload `json:"payload" yaml:"payload"`
}

// CatalogPayload lists the application ids offered by a catalog.
type CatalogPayload struct {
	AppIDs []string `json:"appIds" yaml:"appIds"`
}

// IsVisible reports whether the group is shown on the launchpad.
func (g Group) IsVisible() bool { return !g.Hidden }

// Size returns the combined number of tiles and links.
func (g Group) Size() int { return len(g.Payload.Tiles) + len(g.Payload.Links) }

// Entries returns tiles followed by links, the combined addressing order used
// by tile removal and moves.
func (g Group) Entries() []Tile {
	out := make([]Tile, 0, g.Size())
	out = append(out, g.Payload.Tiles...)
	return append(out, g.Payload.Links...)
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	cp := g
	cp.Payload.Tiles = cloneTiles(g.Payload.Tiles)
	cp.Payload.Links = cloneTiles(g.Payload.Links)
	return cp
}

func cloneTiles(in []Tile) []Tile {
	if in == nil {
		return nil
	}
	out := make([]Tile, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// OrderedGroups returns the groups in GroupsOrder order. Ids without a group
// are skipped; groups missing from the order list follow, sorted by id.
func (s *Site) OrderedGroups() []Group {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(s.GroupsOrder))
	out := make([]Group, 0, len(s.Groups))
	for _, id := range s.GroupsOrder {
		g, ok := s.Groups[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, g)
	}
	var rest []string
	for id := range s.Groups {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, s.Groups[id])
	}
	return out
}

// DefaultGroup returns the first group flagged as default.
func (s *Site) DefaultGroup() (Group, bool) {
	for _, g := range s.OrderedGroups() {
		if g.Default {
			return g, true
		}
	}
	return Group{}, false
}

// Clone returns a deep copy of the site document.
func (s *Site) Clone() *Site {
	if s == nil {
		return nil
	}
	cp := &Site{Version: s.Version}
	cp.GroupsOrder = append([]string(nil), s.GroupsOrder...)
	cp.Groups = make(map[string]Group, len(s.Groups))
	for id, g := range s.Groups {
		cp.Groups[id] = g.Clone()
	}
	cp.Applications = make(map[string]AppDescriptor, len(s.Applications))
	for id, app := range s.Applications {
		cp.Applications[id] = app
	}
	cp.Catalogs = make(map[string]Catalog, len(s.Catalogs))
	for id, c := range s.Catalogs {
		c.Payload.AppIDs = append([]string(nil), c.Payload.AppIDs...)
		cp.Catalogs[id] = c
	}
	return cp
}

// Normalize initializes nil maps so callers can write into a freshly decoded document.
func (s *Site) Normalize() {
	if s.Groups == nil {
		s.Groups = make(map[string]Group)
	}
	if s.Applications == nil {
		s.Applications = make(map[string]AppDescriptor)
	}
	if s.Catalogs == nil {
		s.Catalogs = make(map[string]Catalog)
	}
}
