package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func sampleSite() *Site {
	return &Site{
		Version:     "3.1.0",
		GroupsOrder: []string{"b", "ghost", "a", "b"},
		Groups: map[string]Group{
			"a": {ID: "a", Title: "A", Payload: GroupPayload{Tiles: []Tile{{ID: "t1"}}, Links: []Tile{{ID: "l1"}}}},
			"b": {ID: "b", Title: "B", Default: true},
			"z": {ID: "z", Title: "Z"},
			"c": {ID: "c", Title: "C"},
		},
		Catalogs: map[string]Catalog{"cat": {ID: "cat", Payload: CatalogPayload{AppIDs: []string{"x"}}}},
	}
}

func TestOrderedGroups(t *testing.T) {
	var ids []string
	for _, g := range sampleSite().OrderedGroups() {
		ids = append(ids, g.ID)
	}
	want := []string{"b", "a", "c", "z"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
	var nilSite *Site
	if nilSite.OrderedGroups() != nil {
		t.Fatal("nil site should have no groups")
	}
}

func TestSiteLookups(t *testing.T) {
	s := sampleSite()
	g, ok := s.DefaultGroup()
	if !ok || g.ID != "b" {
		t.Fatalf("DefaultGroup = %+v, %v", g, ok)
	}
	delete(s.Groups, "b")
	if _, ok := s.DefaultGroup(); ok {
		t.Fatal("expected no default group")
	}
}

func TestGroupEntriesAndSize(t *testing.T) {
	g := sampleSite().Groups["a"]
	if g.Size() != 2 {
		t.Fatalf("size = %d", g.Size())
	}
	entries := g.Entries()
	if len(entries) != 2 || entries[0].ID != "t1" || entries[1].ID != "l1" {
		t.Fatalf("entries = %+v", entries)
	}
	if !g.IsVisible() {
		t.Fatal("group should be visible")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleSite()
	g := s.Groups["a"]
	g.Payload.Tiles[0].Target = &Target{SemanticObject: "SO", Action: "show", Parameters: []Parameter{{Name: "p", Value: "1"}}}
	s.Groups["a"] = g

	cp := s.Clone()
	cp.GroupsOrder[0] = "changed"
	cp.Groups["a"].Payload.Tiles[0].Target.Parameters[0].Value = "2"
	cp.Catalogs["cat"].Payload.AppIDs[0] = "y"

	if s.GroupsOrder[0] != "b" {
		t.Fatal("order shared with clone")
	}
	if s.Groups["a"].Payload.Tiles[0].Target.Parameters[0].Value != "1" {
		t.Fatal("target parameters shared with clone")
	}
	if s.Catalogs["cat"].Payload.AppIDs[0] != "x" {
		t.Fatal("catalog app ids shared with clone")
	}
	var nilSite *Site
	if nilSite.Clone() != nil {
		t.Fatal("nil clone should be nil")
	}
}

func TestNormalizeInitializesMaps(t *testing.T) {
	var s Site
	if err := json.Unmarshal([]byte(`{"_version":"3.1.0"}`), &s); err != nil {
		t.Fatal(err)
	}
	s.Normalize()
	s.Groups["x"] = Group{ID: "x"}
	s.Applications["app"] = AppDescriptor{ID: "app"}
	s.Catalogs["c"] = Catalog{ID: "c"}
}

func TestTargetEqual(t *testing.T) {
	base := Target{SemanticObject: "SalesOrder", Action: "display", Parameters: []Parameter{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}}
	cases := []struct {
		name  string
		other Target
		want  bool
	}{
		{"reordered parameters", Target{SemanticObject: "SalesOrder", Action: "display", Parameters: []Parameter{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}}}, true},
		{"different value", Target{SemanticObject: "SalesOrder", Action: "display", Parameters: []Parameter{{Name: "a", Value: "1"}, {Name: "b", Value: "3"}}}, false},
		{"missing parameter", Target{SemanticObject: "SalesOrder", Action: "display", Parameters: []Parameter{{Name: "a", Value: "1"}}}, false},
		{"different action", Target{SemanticObject: "SalesOrder", Action: "edit", Parameters: base.Parameters}, false},
		{"different route", Target{SemanticObject: "SalesOrder", Action: "display", Parameters: base.Parameters, AppSpecificRoute: "&/item"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Equal(tc.other); got != tc.want {
				t.Fatalf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
	if base.Intent() != "SalesOrder-display" {
		t.Fatalf("intent = %q", base.Intent())
	}
}

func TestDeviceTypesSupports(t *testing.T) {
	var all *DeviceTypes
	if !all.Supports(DevicePhone) {
		t.Fatal("nil device types should support every class")
	}
	d := &DeviceTypes{Desktop: true, Phone: false, Tablet: true}
	if !d.Supports(DeviceDesktop) || !d.Supports(DeviceTablet) || d.Supports(DevicePhone) {
		t.Fatalf("supports = %+v", d)
	}
}

func TestFailureAndProperties(t *testing.T) {
	f := NewFailure(SeverityError, "app %q has no inbounds", "broken")
	if f.Error() != `error: app "broken" has no inbounds` {
		t.Fatalf("error = %q", f.Error())
	}
	r := ResolvedTile{Result: ResolutionResult{Title: "T", Subtitle: "S", Icon: "I", Info: "N", URL: "u"}}
	if got := r.Properties(); got != (TileProperties{Title: "T", Subtitle: "S", Icon: "I", Info: "N"}) {
		t.Fatalf("properties = %+v", got)
	}
}
