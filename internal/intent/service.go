package intent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"launchpad/pkg/domain"
)

var (
	// ErrInvalidIntent is returned for hashes that cannot be parsed.
	ErrInvalidIntent = errors.New("intent: invalid shell hash")
	// ErrNoMatchingInbound is returned when no application declares the intent.
	ErrNoMatchingInbound = errors.New("intent: no matching inbound")
)

const (
	launchURLSemanticObject = "Shell"
	launchURLAction         = "launchURL"
	externalURLParameter    = "sap-external-url"
	factSheetAction         = "displayFactSheet"
)

// Link is a navigable intent offered by an application.
type Link struct {
	Intent string `json:"intent"`
	Text   string `json:"text"`
	AppID  string `json:"appId"`
}

// Service resolves navigation intents.
type Service interface {
	ResolveTileIntent(ctx context.Context, hash string) (domain.ResolutionResult, error)
	Links(ctx context.Context, semanticObject, action string) ([]Link, error)
	PrimaryIntent(ctx context.Context, semanticObject string) (Link, error)
	ParseShellHash(hash string) (domain.Target, bool)
	ConstructShellHash(target domain.Target) string
}

// SiteSource provides the document whose applications are matched.
type SiteSource interface {
	GetSite(ctx context.Context) (*domain.Site, error)
}

// LocalService resolves intents against the inbounds of the site's applications.
type LocalService struct {
	source SiteSource
}

var _ Service = (*LocalService)(nil)

// NewLocalService constructs a service backed by source.
func NewLocalService(source SiteSource) *LocalService {
	return &LocalService{source: source}
}

// IsLaunchURL reports whether target is the legacy URL-launcher intent.
func IsLaunchURL(target *domain.Target) bool {
	return target != nil && target.SemanticObject == launchURLSemanticObject && target.Action == launchURLAction
}

// ResolveTileIntent resolves a shell hash or literal URL.
func (s *LocalService) ResolveTileIntent(ctx context.Context, hash string) (domain.ResolutionResult, error) {
	if !strings.HasPrefix(strings.TrimSpace(hash), "#") {
		return domain.ResolutionResult{URL: hash, ApplicationType: domain.ApplicationTypeURL}, nil
	}
	target, ok := ParseShellHash(hash)
	if !ok {
		return domain.ResolutionResult{}, fmt.Errorf("%w: %q", ErrInvalidIntent, hash)
	}
	if IsLaunchURL(&target) {
		for _, p := range target.Parameters {
			if p.Name == externalURLParameter {
				return domain.ResolutionResult{URL: p.Value, ApplicationType: domain.ApplicationTypeURL}, nil
			}
		}
		return domain.ResolutionResult{}, fmt.Errorf("%w: %s parameter missing", ErrInvalidIntent, externalURLParameter)
	}

	site, err := s.source.GetSite(ctx)
	if err != nil {
		return domain.ResolutionResult{}, err
	}
	matches := matchInbounds(site, target.SemanticObject, target.Action, true)
	if len(matches) == 0 {
		return domain.ResolutionResult{}, fmt.Errorf("%w: %s", ErrNoMatchingInbound, target.Intent())
	}
	m := matches[0]
	return ResultFromInbound(m.app, m.inbound), nil
}

// Links lists the intents matching semanticObject and action. An empty action matches any.
func (s *LocalService) Links(ctx context.Context, semanticObject, action string) ([]Link, error) {
	site, err := s.source.GetSite(ctx)
	if err != nil {
		return nil, err
	}
	matches := matchInbounds(site, semanticObject, action, false)
	out := make([]Link, 0, len(matches))
	for _, m := range matches {
		out = append(out, Link{
			Intent: ConstructShellHash(domain.Target{SemanticObject: m.inbound.SemanticObject, Action: m.inbound.Action}),
			Text:   firstNonEmpty(m.inbound.Title, m.app.Title),
			AppID:  m.app.ID,
		})
	}
	return out, nil
}

// PrimaryIntent returns the fact sheet intent of semanticObject, or its first link.
func (s *LocalService) PrimaryIntent(ctx context.Context, semanticObject string) (Link, error) {
	links, err := s.Links(ctx, semanticObject, "")
	if err != nil {
		return Link{}, err
	}
	if len(links) == 0 {
		return Link{}, fmt.Errorf("%w: %s", ErrNoMatchingInbound, semanticObject)
	}
	for _, l := range links {
		if strings.HasSuffix(l.Intent, "-"+factSheetAction) {
			return l, nil
		}
	}
	return links[0], nil
}

// ParseShellHash implements Service.
func (s *LocalService) ParseShellHash(hash string) (domain.Target, bool) { return ParseShellHash(hash) }

// ConstructShellHash implements Service.
func (s *LocalService) ConstructShellHash(target domain.Target) string {
	return ConstructShellHash(target)
}

// ResultFromInbound maps an application inbound into a resolution result.
func ResultFromInbound(app domain.AppDescriptor, inbound domain.Inbound) domain.ResolutionResult {
	appType := app.ApplicationType
	if appType == "" {
		appType = domain.ApplicationTypeSAPUI5
	}
	deviceTypes := inbound.DeviceTypes
	if deviceTypes == nil {
		deviceTypes = app.DeviceTypes
	}
	res := domain.ResolutionResult{
		Title:                 firstNonEmpty(inbound.Title, app.Title),
		Subtitle:              firstNonEmpty(inbound.Subtitle, app.Subtitle),
		Icon:                  firstNonEmpty(inbound.Icon, app.Icon),
		Info:                  firstNonEmpty(inbound.Info, app.Info),
		IsCustomTile:          app.CustomTile,
		IndicatorDataSource:   inbound.IndicatorDataSource,
		URL:                   app.URL,
		ApplicationType:       appType,
		AdditionalInformation: app.AdditionalInformation,
		DeviceTypes:           deviceTypes,
	}
	if app.CustomTile {
		if ids := sortedKeys(app.Outbounds); len(ids) > 0 {
			ob := app.Outbounds[ids[0]]
			res.TargetOutbound = &ob
		}
	}
	return res
}

type inboundMatch struct {
	app     domain.AppDescriptor
	inbound domain.Inbound
}

// matchInbounds walks applications and inbounds in sorted id order.
func matchInbounds(site *domain.Site, semanticObject, action string, includeHidden bool) []inboundMatch {
	if site == nil {
		return nil
	}
	var out []inboundMatch
	for _, appID := range sortedKeys(site.Applications) {
		app := site.Applications[appID]
		if app.ID == "" {
			app.ID = appID
		}
		for _, inboundID := range sortedKeys(app.Inbounds) {
			in := app.Inbounds[inboundID]
			if !includeHidden && in.HideLauncher {
				continue
			}
			if !wildcardEqual(in.SemanticObject, semanticObject) {
				continue
			}
			if action != "" && !wildcardEqual(in.Action, action) {
				continue
			}
			out = append(out, inboundMatch{app: app, inbound: in})
		}
	}
	return out
}

func wildcardEqual(declared, requested string) bool {
	return declared == "*" || declared == requested
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
