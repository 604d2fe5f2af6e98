// Package store defines the record store the engine reads and writes through,
// together with an in-memory implementation and the default household fixture.
package store

import (
	"context"
	"strings"

	"homebase/internal/apperr"
	"homebase/internal/models"
)

// RecordStore is the CRUD collaborator over profiles, items, tasks and the
// history log. Implementations return copies; mutating a returned value never
// changes stored state.
type RecordStore interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error

	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error

	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	// AddTaskItem creates item in the registry and appends it to the task's
	// item list as one unit: either both writes are visible or neither is.
	AddTaskItem(ctx context.Context, taskID string, item *models.Item) error

	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	// ListHistory returns entries most-recent-first.
	ListHistory(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)

	Close() error
}

// ValidateItem checks the fields required to create an item.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return apperr.Required("item")
	}
	if strings.TrimSpace(item.ID) == "" {
		return apperr.Required("id")
	}
	if strings.TrimSpace(item.Name) == "" {
		return apperr.Required("name")
	}
	if strings.TrimSpace(item.Owner) == "" {
		return apperr.Required("owner")
	}
	if strings.TrimSpace(item.Location) == "" {
		return apperr.Required("location")
	}
	if !models.IsItemStatusValid(item.Status) {
		return &apperr.ValidationError{Field: "status", Msg: "must be \"In Place\" or \"Misplaced\""}
	}
	return nil
}

// ValidateTask checks the fields required to create a task.
func ValidateTask(task *models.Task) error {
	if task == nil {
		return apperr.Required("task")
	}
	if strings.TrimSpace(task.ID) == "" {
		return apperr.Required("id")
	}
	if strings.TrimSpace(task.Title) == "" {
		return apperr.Required("title")
	}
	switch task.Kind {
	case models.TaskKindChecklist, models.TaskKindTodo:
	default:
		return &apperr.ValidationError{Field: "kind", Msg: "must be \"checklist\" or \"todo\""}
	}
	for _, it := range task.Items {
		if strings.TrimSpace(it.Name) == "" {
			return apperr.Required("items.name")
		}
	}
	return nil
}

// ValidateProfile checks the fields required to create a profile.
func ValidateProfile(p *models.Profile) error {
	if p == nil {
		return apperr.Required("profile")
	}
	if strings.TrimSpace(p.ID) == "" {
		return apperr.Required("id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Required("name")
	}
	return nil
}
