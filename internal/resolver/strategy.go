// Package resolver turns tile references into resolved tiles. Each tile is
// classified into exactly one resolution strategy, checked in priority order:
// literal URL, bookmark intent, legacy URL-launcher intent, application reference.
package resolver

import (
	"launchpad/internal/intent"
	"launchpad/pkg/domain"
)

// Strategy is the closed set of resolution variants.
type Strategy interface {
	Name() string
	isStrategy()
}

// LiteralURL resolves trivially to a launch-URL tile.
type LiteralURL struct {
	URL string
}

// BookmarkIntent resolves a bookmark's stored intent through the intent service.
type BookmarkIntent struct {
	Target domain.Target
}

// LegacyURLLauncher resolves a Shell-launchURL intent through the intent service.
type LegacyURLLauncher struct {
	Target domain.Target
}

// AppReference resolves through the first navigable inbound of an application.
type AppReference struct {
	AppID     string
	AppIDHint string
}

func (LiteralURL) Name() string        { return "literal_url" }
func (BookmarkIntent) Name() string    { return "bookmark_intent" }
func (LegacyURLLauncher) Name() string { return "legacy_url_launcher" }
func (AppReference) Name() string      { return "app_reference" }

func (LiteralURL) isStrategy()        {}
func (BookmarkIntent) isStrategy()    {}
func (LegacyURLLauncher) isStrategy() {}
func (AppReference) isStrategy()      {}

// Classify picks the strategy for tile.
func Classify(tile domain.Tile) Strategy {
	switch {
	case tile.URL != "" && tile.Target == nil:
		return LiteralURL{URL: tile.URL}
	case tile.IsBookmark && tile.Target != nil:
		return BookmarkIntent{Target: tile.Target.Clone()}
	case intent.IsLaunchURL(tile.Target):
		return LegacyURLLauncher{Target: tile.Target.Clone()}
	default:
		return AppReference{AppID: tile.AppID, AppIDHint: tile.AppIDHint}
	}
}
