package launchpad

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"launchpad/pkg/domain"
)

// mutate fetches the document and applies fn under the adapter lock. When fn
// reports a change the document is persisted; a persist failure is returned
// as a MutationError carrying the value fn reported as previous.
func (a *Adapter) mutate(ctx context.Context, op string, fn func(doc *domain.Site) (changed bool, previous any, err error)) (err error) {
	started := time.Now()
	defer func() { a.observe(ctx, op, started, err) }()

	doc, err := a.accessor.GetSite(ctx)
	if err != nil {
		return loadFailure(op, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	doc.Normalize()
	changed, previous, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	if saveErr := a.accessor.Save(ctx); saveErr != nil {
		a.logger.ErrorContext(ctx, "launchpad: persist failed", slog.String("operation", op), slog.String("error", saveErr.Error()))
		return &MutationError{Op: op, Err: saveErr, Previous: previous}
	}
	return nil
}

func lookupGroup(doc *domain.Site, id string) (domain.Group, error) {
	g, ok := doc.Groups[id]
	if !ok {
		return domain.Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, id)
	}
	return g, nil
}

// AddGroup appends an empty group titled title and persists it.
func (a *Adapter) AddGroup(ctx context.Context, title string) (domain.Group, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Group{}, invalid("group title must not be empty")
	}
	g := domain.Group{
		ID:      uuid.NewString(),
		Title:   title,
		Payload: domain.GroupPayload{Tiles: []domain.Tile{}, Links: []domain.Tile{}},
	}
	err := a.mutate(ctx, "add_group", func(doc *domain.Site) (bool, any, error) {
		doc.Groups[g.ID] = g
		doc.GroupsOrder = append(doc.GroupsOrder, g.ID)
		return true, nil, nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	return g.Clone(), nil
}

// SetGroupTitle renames group. On persist failure the MutationError carries
// the previous title.
func (a *Adapter) SetGroupTitle(ctx context.Context, group domain.Group, title string) error {
	if group.ID == "" {
		return invalid("group id required")
	}
	if strings.TrimSpace(title) == "" {
		return invalid("group title must not be empty")
	}
	return a.mutate(ctx, "set_group_title", func(doc *domain.Site) (bool, any, error) {
		current, err := lookupGroup(doc, group.ID)
		if err != nil {
			return false, nil, err
		}
		previous := current.Title
		current.Title = title
		doc.Groups[group.ID] = current
		return true, previous, nil
	})
}

// GroupID returns the id of group.
func (a *Adapter) GroupID(group domain.Group) string { return group.ID }

// HideGroups marks exactly the groups in ids as hidden. An empty slice shows
// every group; a nil slice is rejected.
func (a *Adapter) HideGroups(ctx context.Context, ids []string) error {
	if ids == nil {
		return invalid("hidden group ids must be a list")
	}
	return a.mutate(ctx, "hide_groups", func(doc *domain.Site) (bool, any, error) {
		for id, g := range doc.Groups {
			g.Hidden = slices.Contains(ids, id)
			doc.Groups[id] = g
		}
		return true, nil, nil
	})
}

// IsGroupVisible reports whether group is shown.
func (a *Adapter) IsGroupVisible(group domain.Group) bool { return group.IsVisible() }

// MoveGroup moves group to index in the display order. Moving a group onto
// its current index leaves the document untouched.
func (a *Adapter) MoveGroup(ctx context.Context, group domain.Group, index int) error {
	if group.ID == "" {
		return invalid("group id required")
	}
	if index < 0 {
		return invalid("group index %d is negative", index)
	}
	return a.mutate(ctx, "move_group", func(doc *domain.Site) (bool, any, error) {
		ordered := doc.OrderedGroups()
		ids := make([]string, len(ordered))
		for i, g := range ordered {
			ids[i] = g.ID
		}
		from := slices.Index(ids, group.ID)
		if from < 0 {
			return false, nil, fmt.Errorf("%w: %s", ErrGroupNotFound, group.ID)
		}
		if from == index {
			return false, nil, nil
		}
		ids = slices.Delete(ids, from, from+1)
		ids = slices.Insert(ids, min(index, len(ids)), group.ID)
		doc.GroupsOrder = ids
		return true, nil, nil
	})
}

// RemoveGroup deletes group from the document.
func (a *Adapter) RemoveGroup(ctx context.Context, group domain.Group) error {
	if group.ID == "" {
		return invalid("group id required")
	}
	return a.mutate(ctx, "remove_group", func(doc *domain.Site) (bool, any, error) {
		if _, err := lookupGroup(doc, group.ID); err != nil {
			return false, nil, err
		}
		delete(doc.Groups, group.ID)
		doc.GroupsOrder = slices.DeleteFunc(doc.GroupsOrder, func(id string) bool { return id == group.ID })
		return true, nil, nil
	})
}

// ResetGroup restores a preset group from the original site. User-created
// groups are rejected with ErrNotResettable. A failure carries the group as
// it was before the reset.
func (a *Adapter) ResetGroup(ctx context.Context, group domain.Group) (domain.Group, error) {
	if group.ID == "" {
		return domain.Group{}, invalid("group id required")
	}
	var restored domain.Group
	err := a.mutate(ctx, "reset_group", func(doc *domain.Site) (bool, any, error) {
		current, err := lookupGroup(doc, group.ID)
		if err != nil {
			return false, nil, err
		}
		if !current.Preset {
			return false, nil, ErrNotResettable
		}
		original, err := a.accessor.GroupFromOriginalSite(ctx, group.ID)
		if err != nil {
			return false, nil, &MutationError{Op: "reset_group", Err: err, Previous: current}
		}
		original.ID = group.ID
		doc.Groups[group.ID] = original
		restored = original.Clone()
		return true, current, nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	return restored, nil
}

// IsGroupRemovable reports whether group can be removed; preset groups can
// only be reset.
func (a *Adapter) IsGroupRemovable(group domain.Group) bool { return !group.Preset }

// IsGroupLocked reports whether group is locked against personalization.
func (a *Adapter) IsGroupLocked(group domain.Group) bool { return group.Locked }
