package domain

import (
	"sort"
	"time"
)

// TileType classifies how a tile is rendered inside a group.
type TileType string

const (
	// TileTypeTile is a regular tile.
	TileTypeTile TileType = "tile"
	// TileTypeLink is a tile rendered in reduced link mode.
	TileTypeLink TileType = "link"
)

// Tile is a navigable entry of a group.
type Tile struct {
	ID                  string               `json:"id" yaml:"id"`
	Target              *Target              `json:"target,omitempty" yaml:"target,omitempty"`
	URL                 string               `json:"url,omitempty" yaml:"url,omitempty"`
	Outbound            string               `json:"outbound,omitempty" yaml:"outbound,omitempty"`
	AppID               string               `json:"appId,omitempty" yaml:"appId,omitempty"`
	AppIDHint           string               `json:"appIdHint,omitempty" yaml:"appIdHint,omitempty"`
	IsBookmark          bool                 `json:"isBookmark,omitempty" yaml:"isBookmark,omitempty"`
	IndicatorDataSource *IndicatorDataSource `json:"indicatorDataSource,omitempty" yaml:"indicatorDataSource,omitempty"`
	Title               string               `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle            string               `json:"subTitle,omitempty" yaml:"subTitle,omitempty"`
	Icon                string               `json:"icon,omitempty" yaml:"icon,omitempty"`
	Info                string               `json:"info,omitempty" yaml:"info,omitempty"`
	Size                string               `json:"size,omitempty" yaml:"size,omitempty"`
}

// Clone returns a deep copy of the tile.
func (t Tile) Clone() Tile {
	cp := t
	if t.Target != nil {
		target := t.Target.Clone()
		cp.Target = &target
	}
	if t.IndicatorDataSource != nil {
		ids := *t.IndicatorDataSource
		cp.IndicatorDataSource = &ids
	}
	return cp
}

// Target is a navigation intent: semantic object, action and ordered parameters.
type Target struct {
	SemanticObject   string      `json:"semanticObject" yaml:"semanticObject"`
	Action           string      `json:"action" yaml:"action"`
	Parameters       []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	AppSpecificRoute string      `json:"appSpecificRoute,omitempty" yaml:"appSpecificRoute,omitempty"`
}

// Parameter is one name/value pair of an intent.
type Parameter struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Clone returns a copy of the target with its own parameter slice.
func (t Target) Clone() Target {
	cp := t
	cp.Parameters = append([]Parameter(nil), t.Parameters...)
	return cp
}

// Intent returns the "SemanticObject-action" part of the target.
func (t Target) Intent() string {
	return t.SemanticObject + "-" + t.Action
}

// Equal reports structural equality: same semantic object, action, route and
// parameter multiset regardless of parameter order.
func (t Target) Equal(other Target) bool {
	if t.SemanticObject != other.SemanticObject || t.Action != other.Action || t.AppSpecificRoute != other.AppSpecificRoute {
		return false
	}
	if len(t.Parameters) != len(other.Parameters) {
		return false
	}
	a, b := sortedParameters(t.Parameters), sortedParameters(other.Parameters)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedParameters(in []Parameter) []Parameter {
	out := append([]Parameter(nil), in...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// IndicatorDataSource describes a dynamic tile counter feed.
type IndicatorDataSource struct {
	Path            string        `json:"path" yaml:"path"`
	RefreshInterval time.Duration `json:"refresh,omitempty" yaml:"refresh,omitempty"`
	DataSource      string        `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`
}
