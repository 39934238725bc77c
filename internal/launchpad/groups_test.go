package launchpad

import (
	"context"
	"errors"
	"slices"
	"testing"

	"launchpad/pkg/domain"
)

func TestAddGroup(t *testing.T) {
	h := newHarness(t, fixtureSite())
	ctx := context.Background()

	if _, err := h.adapter.AddGroup(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title err = %v", err)
	}
	if n := h.accessor.gets.Load(); n != 0 {
		t.Fatalf("invalid input touched the document")
	}

	first, err := h.adapter.AddGroup(ctx, "Finance")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	second, err := h.adapter.AddGroup(ctx, "Finance")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not unique: %q %q", first.ID, second.ID)
	}
	if first.Title != "Finance" {
		t.Fatalf("title = %q", first.Title)
	}
	order := h.accessor.doc.GroupsOrder
	if order[len(order)-2] != first.ID || order[len(order)-1] != second.ID {
		t.Fatalf("order = %v", order)
	}
	if n := h.accessor.saves.Load(); n != 2 {
		t.Fatalf("saves = %d", n)
	}
	if got := h.metrics.outcomes("add_group"); len(got) != 2 || !got[0] {
		t.Fatalf("metrics = %v", got)
	}
}

func TestSetGroupTitlePersistFailureCarriesPreviousTitle(t *testing.T) {
	h := newHarness(t, fixtureSite())
	ctx := context.Background()
	sales := h.accessor.doc.Groups["sales"]

	if err := h.adapter.SetGroupTitle(ctx, domain.Group{}, "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing id err = %v", err)
	}
	if err := h.adapter.SetGroupTitle(ctx, sales, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty title err = %v", err)
	}

	h.accessor.saveErr = errors.New("disk full")
	err := h.adapter.SetGroupTitle(ctx, sales, "Revenue")
	var mErr *MutationError
	if !errors.As(err, &mErr) {
		t.Fatalf("err = %v", err)
	}
	if mErr.Previous != "Sales" {
		t.Fatalf("previous = %v", mErr.Previous)
	}
	if got := h.metrics.outcomes("set_group_title"); len(got) != 1 || got[0] {
		t.Fatalf("metrics = %v", got)
	}
}

func TestMutationLoadFailure(t *testing.T) {
	h := newHarness(t, fixtureSite())
	h.accessor.getErr = errors.New("timeout")
	_, err := h.adapter.AddGroup(context.Background(), "Finance")
	if !errors.Is(err, ErrLoadSite) {
		t.Fatalf("err = %v", err)
	}
	if err.Error() != "add_group: launchpad: failed to load site: timeout" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestHideGroups(t *testing.T) {
	h := newHarness(t, fixtureSite())
	ctx := context.Background()

	if err := h.adapter.HideGroups(ctx, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil ids err = %v", err)
	}
	if err := h.adapter.HideGroups(ctx, []string{"sales"}); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if h.adapter.IsGroupVisible(h.accessor.doc.Groups["sales"]) || !h.adapter.IsGroupVisible(h.accessor.doc.Groups["home"]) {
		t.Fatal("visibility not applied")
	}
	if err := h.adapter.HideGroups(ctx, []string{}); err != nil {
		t.Fatalf("show all: %v", err)
	}
	for id, g := range h.accessor.doc.Groups {
		if g.Hidden {
			t.Fatalf("group %s still hidden", id)
		}
	}
}

func TestMoveGroup(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		group string
		index int
		want  []string
		saves int32
		err   error
	}{
		{name: "same index is a no-op", group: "sales", index: 1, want: []string{"home", "sales"}, saves: 0},
		{name: "move to front", group: "sales", index: 0, want: []string{"sales", "home"}, saves: 1},
		{name: "index past the end is clamped", group: "home", index: 9, want: []string{"sales", "home"}, saves: 1},
		{name: "negative index", group: "home", index: -1, want: []string{"home", "sales"}, err: ErrInvalidInput},
		{name: "missing id", group: "", index: 0, want: []string{"home", "sales"}, err: ErrInvalidInput},
		{name: "unknown group", group: "nope", index: 0, want: []string{"home", "sales"}, err: ErrGroupNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, fixtureSite())
			before := h.accessor.doc.GroupsOrder
			err := h.adapter.MoveGroup(ctx, domain.Group{ID: tc.group}, tc.index)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err = %v, want %v", err, tc.err)
				}
			} else if err != nil {
				t.Fatalf("move: %v", err)
			}
			if !slices.Equal(h.accessor.doc.GroupsOrder, tc.want) {
				t.Fatalf("order = %v, want %v", h.accessor.doc.GroupsOrder, tc.want)
			}
			if tc.saves == 0 && &before[0] != &h.accessor.doc.GroupsOrder[0] {
				t.Fatal("order list replaced on no-op")
			}
			if n := h.accessor.saves.Load(); n != tc.saves {
				t.Fatalf("saves = %d, want %d", n, tc.saves)
			}
		})
	}
}

func TestRemoveGroup(t *testing.T) {
	h := newHarness(t, fixtureSite())
	ctx := context.Background()
	if err := h.adapter.RemoveGroup(ctx, domain.Group{ID: "sales"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := h.accessor.doc.Groups["sales"]; ok {
		t.Fatal("group still present")
	}
	if !slices.Equal(h.accessor.doc.GroupsOrder, []string{"home"}) {
		t.Fatalf("order = %v", h.accessor.doc.GroupsOrder)
	}
	if err := h.adapter.RemoveGroup(ctx, domain.Group{ID: "sales"}); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("second remove err = %v", err)
	}
}

func TestResetGroup(t *testing.T) {
	h := newHarness(t, fixtureSite())
	ctx := context.Background()
	home := h.accessor.doc.Groups["home"]
	home.Title = "My Stuff"
	home.Payload.Tiles = nil
	h.accessor.doc.Groups["home"] = home

	if _, err := h.adapter.ResetGroup(ctx, domain.Group{ID: "sales"}); !errors.Is(err, ErrNotResettable) {
		t.Fatalf("user group err = %v", err)
	}
	if h.adapter.IsGroupRemovable(home) || !h.adapter.IsGroupRemovable(h.accessor.doc.Groups["sales"]) {
		t.Fatal("removability should follow the preset flag")
	}

	restored, err := h.adapter.ResetGroup(ctx, home)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if restored.Title != "Home" || len(restored.Payload.Tiles) != 1 {
		t.Fatalf("restored = %+v", restored)
	}
	if h.accessor.doc.Groups["home"].Title != "Home" {
		t.Fatal("document not updated")
	}

	h.accessor.doc.Groups["home"] = home
	h.accessor.saveErr = errors.New("disk full")
	_, err = h.adapter.ResetGroup(ctx, home)
	var mErr *MutationError
	if !errors.As(err, &mErr) {
		t.Fatalf("err = %v", err)
	}
	prev, ok := mErr.Previous.(domain.Group)
	if !ok || prev.Title != "My Stuff" {
		t.Fatalf("previous = %#v", mErr.Previous)
	}
}

func TestGroupAccessors(t *testing.T) {
	h := newHarness(t, fixtureSite())
	g := domain.Group{ID: "g1", Locked: true, Hidden: true}
	if h.adapter.GroupID(g) != "g1" || !h.adapter.IsGroupLocked(g) || h.adapter.IsGroupVisible(g) {
		t.Fatalf("accessors disagree with %+v", g)
	}
}
