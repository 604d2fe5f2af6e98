// Package registry is the read/write view over tracked items. All status and
// location changes made by the workflows go through it.
package registry

import (
	"context"
	"fmt"
	"log"
	"strings"

	"homebase/internal/apperr"
	"homebase/internal/events"
	"homebase/internal/models"
	"homebase/internal/store"
)

// AmbiguousMatchWarning is reported when an essential name matches no item or
// more than one item. It is advisory; the first match (if any) is used.
type AmbiguousMatchWarning struct {
	Profile string   `json:"profile"`
	Name    string   `json:"name"`
	Matches []string `json:"matches"`
}

func (w AmbiguousMatchWarning) String() string {
	if len(w.Matches) == 0 {
		return fmt.Sprintf("essential %q of %s matches no item", w.Name, w.Profile)
	}
	return fmt.Sprintf("essential %q of %s matches %d items (%s), using %s",
		w.Name, w.Profile, len(w.Matches), strings.Join(w.Matches, ", "), w.Matches[0])
}

// Registry wraps a RecordStore with item-specific operations
type Registry struct {
	store  store.RecordStore
	events events.Publisher
}

// New creates a registry. A nil publisher discards events.
func New(s store.RecordStore, pub events.Publisher) *Registry {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Registry{store: s, events: pub}
}

// Get returns an item by id
func (r *Registry) Get(ctx context.Context, id string) (*models.Item, error) {
	return r.store.GetItem(ctx, id)
}

// List returns all items in registry order
func (r *Registry) List(ctx context.Context) ([]models.Item, error) {
	return r.store.ListItems(ctx)
}

// Create adds a standalone item
func (r *Registry) Create(ctx context.Context, item *models.Item) error {
	if err := r.store.CreateItem(ctx, item); err != nil {
		return err
	}
	r.events.Publish(events.KindItemCreated, *item)
	return nil
}

// CreateInTask adds an item to the registry and to the task's item list as one unit
func (r *Registry) CreateInTask(ctx context.Context, taskID string, item *models.Item) error {
	if err := r.store.AddTaskItem(ctx, taskID, item); err != nil {
		return err
	}
	r.events.Publish(events.KindItemCreated, *item)
	return nil
}

// SetStatus sets an item's status, leaving its location unchanged
func (r *Registry) SetStatus(ctx context.Context, id string, status models.ItemStatus) (*models.Item, error) {
	if !models.IsItemStatusValid(status) {
		return nil, &apperr.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", status)}
	}
	item, err := r.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Status = status
	if err := r.store.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	r.events.Publish(events.KindItemUpdated, *item)
	return item, nil
}

// Relocate records a new location for an item and marks it in place
func (r *Registry) Relocate(ctx context.Context, id, location string) (*models.Item, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperr.Required("location")
	}
	item, err := r.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Location = location
	item.Status = models.StatusInPlace
	if err := r.store.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	r.events.Publish(events.KindItemUpdated, *item)
	return item, nil
}

// MatchEssentials resolves a profile's essentials to registry items by exact
// name. For each essential the first item in registry order wins; names with
// zero or several matches produce a warning, which is also logged.
func (r *Registry) MatchEssentials(ctx context.Context, profile models.Profile) ([]models.Item, []AmbiguousMatchWarning, error) {
	items, err := r.store.ListItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	matched, warnings := MatchByName(profile, items)
	for _, w := range warnings {
		log.Printf("registry: %s", w)
	}
	return matched, warnings, nil
}

// MatchByName is the pure form of MatchEssentials over a fixed item snapshot.
// An item matched by two essentials is returned once.
func MatchByName(profile models.Profile, items []models.Item) ([]models.Item, []AmbiguousMatchWarning) {
	matched := make([]models.Item, 0, len(profile.Essentials))
	var warnings []AmbiguousMatchWarning
	seen := make(map[string]bool)

	for _, name := range profile.Essentials {
		var hits []models.Item
		for _, it := range items {
			if it.Name == name {
				hits = append(hits, it)
			}
		}
		if len(hits) != 1 {
			ids := make([]string, len(hits))
			for i, h := range hits {
				ids[i] = h.ID
			}
			warnings = append(warnings, AmbiguousMatchWarning{Profile: profile.Name, Name: name, Matches: ids})
		}
		if len(hits) == 0 || seen[hits[0].ID] {
			continue
		}
		seen[hits[0].ID] = true
		matched = append(matched, hits[0])
	}
	return matched, warnings
}
