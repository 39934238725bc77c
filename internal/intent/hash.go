// Package intent encodes navigation intents as shell hashes and resolves them
// against the applications declared in a site document.
package intent

import (
	"net/url"
	"strings"

	"launchpad/pkg/domain"
)

const routeSeparator = "&/"

// ParseShellHash decodes "#SemanticObject-action?name=value&...&/route".
// It reports false when the hash does not denote an intent.
func ParseShellHash(hash string) (domain.Target, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hash), "#")
	if s == "" {
		return domain.Target{}, false
	}

	var target domain.Target
	if idx := strings.Index(s, routeSeparator); idx >= 0 {
		target.AppSpecificRoute = s[idx+len(routeSeparator):]
		s = s[:idx]
	}

	intentPart, query, _ := strings.Cut(s, "?")
	so, action, ok := strings.Cut(intentPart, "-")
	if !ok || so == "" || action == "" {
		return domain.Target{}, false
	}
	target.SemanticObject = so
	target.Action = action

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return domain.Target{}, false
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return domain.Target{}, false
		}
		target.Parameters = append(target.Parameters, domain.Parameter{Name: name, Value: value})
	}
	return target, true
}

// ConstructShellHash encodes target as a shell hash, keeping parameter order.
func ConstructShellHash(target domain.Target) string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(target.SemanticObject)
	b.WriteString("-")
	b.WriteString(target.Action)
	for i, p := range target.Parameters {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.Value))
	}
	if target.AppSpecificRoute != "" {
		b.WriteString(routeSeparator)
		b.WriteString(target.AppSpecificRoute)
	}
	return b.String()
}

// IsIntent reports whether raw is a parseable shell hash.
func IsIntent(raw string) bool {
	if !strings.HasPrefix(strings.TrimSpace(raw), "#") {
		return false
	}
	_, ok := ParseShellHash(raw)
	return ok
}

// Reference is the canonical navigation target derived from a URL: either an
// intent or a literal URL.
type Reference struct {
	Target *domain.Target
	URL    string
}

// ReferenceFor derives the reference target for raw.
func ReferenceFor(raw string) Reference {
	if IsIntent(raw) {
		t, _ := ParseShellHash(raw)
		return Reference{Target: &t}
	}
	return Reference{URL: strings.TrimSpace(raw)}
}

// Matches reports whether the tile denotes the same bookmark as r.
func (r Reference) Matches(tile domain.Tile) bool {
	if r.Target != nil {
		return tile.Target != nil && tile.Target.Equal(*r.Target)
	}
	return r.URL != "" && tile.Target == nil && tile.URL == r.URL
}
