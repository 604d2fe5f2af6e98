// Package checklist reconciles per-task checked state with the item registry.
// Completing a checklist with items left unchecked asks for confirmation and
// then marks those items misplaced.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"homebase/internal/apperr"
	"homebase/internal/events"
	"homebase/internal/history"
	"homebase/internal/models"
	"homebase/internal/registry"
	"homebase/internal/store"
)

// State is the completion state of one task instance
type State string

const (
	InProgress                    State = "InProgress"
	AwaitingMisplacedConfirmation State = "AwaitingMisplacedConfirmation"
	Completed                     State = "Completed"
)

// Status is a snapshot of a task's checklist state
type Status struct {
	TaskID    string   `json:"taskId"`
	State     State    `json:"state"`
	Checked   []string `json:"checked"`
	Unchecked int      `json:"unchecked"`
}

// MisplacedResult reports what ConfirmMisplaced changed
type MisplacedResult struct {
	Status  Status                `json:"status"`
	Marked  []models.HistoryEntry `json:"marked"`
	Skipped []string              `json:"skipped"`
}

// NewItem is the input for adding an item to a checklist. An empty Status
// means In Place.
type NewItem struct {
	Name     string            `json:"name"`
	Owner    string            `json:"owner"`
	Location string            `json:"location"`
	Status   models.ItemStatus `json:"status"`
	HasTag   bool              `json:"hasTag"`
}

// InitialStatus resolves and validates the requested status
func (in NewItem) InitialStatus() (models.ItemStatus, error) {
	if in.Status == "" {
		return models.StatusInPlace, nil
	}
	if !models.IsItemStatusValid(in.Status) {
		return "", &apperr.ValidationError{Field: "status", Msg: "must be \"In Place\" or \"Misplaced\""}
	}
	return in.Status, nil
}

type instance struct {
	state   State
	checked map[string]bool
}

// Workflow holds checked state for every task that has been touched.
// Untouched tasks are InProgress with nothing checked.
type Workflow struct {
	store    store.RecordStore
	registry *registry.Registry
	history  *history.Recorder
	events   events.Publisher

	mu        sync.Mutex
	instances map[string]*instance
	newID     func() string
}

// New creates a checklist workflow. A nil publisher discards events.
func New(s store.RecordStore, reg *registry.Registry, rec *history.Recorder, pub events.Publisher) *Workflow {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Workflow{
		store:     s,
		registry:  reg,
		history:   rec,
		events:    pub,
		instances: make(map[string]*instance),
		newID:     func() string { return uuid.New().String() },
	}
}

func (w *Workflow) instance(taskID string) *instance {
	in, ok := w.instances[taskID]
	if !ok {
		in = &instance{state: InProgress, checked: make(map[string]bool)}
		w.instances[taskID] = in
	}
	return in
}

func (w *Workflow) task(ctx context.Context, taskID string) (*models.Task, error) {
	return w.store.GetTask(ctx, taskID)
}

func statusOf(task *models.Task, in *instance) Status {
	st := Status{TaskID: task.ID, State: in.state, Checked: []string{}}
	for _, ti := range task.Items {
		if in.checked[ti.ItemID] {
			st.Checked = append(st.Checked, ti.ItemID)
		} else {
			st.Unchecked++
		}
	}
	return st
}

func (w *Workflow) publish(st Status) {
	w.events.Publish(events.KindChecklistState, st)
}

// Status returns the current state of a task
func (w *Workflow) Status(ctx context.Context, taskID string) (Status, error) {
	task, err := w.task(ctx, taskID)
	if err != nil {
		return Status{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return statusOf(task, w.instance(taskID)), nil
}

// Check sets or clears the checked mark of one item. Checking while a
// misplaced confirmation is pending discards the prompt, and touching a
// completed task starts a new run.
func (w *Workflow) Check(ctx context.Context, taskID, itemID string, checked bool) (Status, error) {
	task, err := w.task(ctx, taskID)
	if err != nil {
		return Status{}, err
	}
	found := false
	for _, ti := range task.Items {
		if ti.ItemID == itemID {
			found = true
			break
		}
	}
	if !found {
		return Status{}, apperr.NotFound("checklist item", itemID)
	}

	w.mu.Lock()
	in := w.instance(taskID)
	in.state = InProgress
	if checked {
		in.checked[itemID] = true
	} else {
		delete(in.checked, itemID)
	}
	st := statusOf(task, in)
	w.mu.Unlock()

	w.publish(st)
	return st, nil
}

// AttemptComplete completes the task when every item is checked, clearing
// the marks for the next run. Otherwise it waits for misplaced confirmation
// and reports how many items are unchecked.
func (w *Workflow) AttemptComplete(ctx context.Context, taskID string) (Status, error) {
	task, err := w.task(ctx, taskID)
	if err != nil {
		return Status{}, err
	}

	w.mu.Lock()
	in := w.instance(taskID)
	st := statusOf(task, in)
	if st.Unchecked == 0 {
		in.state = Completed
		in.checked = make(map[string]bool)
		st = statusOf(task, in)
		// the run that just finished had nothing left unchecked
		st.Unchecked = 0
	} else {
		in.state = AwaitingMisplacedConfirmation
		st.State = in.state
	}
	w.mu.Unlock()

	w.publish(st)
	return st, nil
}

// ConfirmMisplaced marks every unchecked item misplaced and records it in
// history, then returns the task to InProgress. Items already misplaced are
// skipped, so repeating the confirmation records nothing new.
func (w *Workflow) ConfirmMisplaced(ctx context.Context, taskID string) (MisplacedResult, error) {
	task, err := w.task(ctx, taskID)
	if err != nil {
		return MisplacedResult{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	in := w.instance(taskID)
	if in.state != AwaitingMisplacedConfirmation {
		return MisplacedResult{}, &apperr.StateError{Subject: "checklist " + taskID, State: string(in.state), Op: "confirm misplaced items of"}
	}

	res := MisplacedResult{Marked: []models.HistoryEntry{}, Skipped: []string{}}
	for _, ti := range task.Items {
		if in.checked[ti.ItemID] {
			continue
		}
		item, err := w.registry.Get(ctx, ti.ItemID)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Printf("checklist: %s references missing item %s, skipping", taskID, ti.ItemID)
			res.Skipped = append(res.Skipped, ti.ItemID)
			continue
		}
		if err != nil {
			return MisplacedResult{}, err
		}
		if item.Status == models.StatusMisplaced {
			res.Skipped = append(res.Skipped, ti.ItemID)
			continue
		}

		item, err = w.registry.SetStatus(ctx, item.ID, models.StatusMisplaced)
		if err != nil {
			return MisplacedResult{}, err
		}
		entry, err := w.history.Append(ctx, history.Draft{
			ItemID:   item.ID,
			ItemName: item.Name,
			User:     item.Owner,
			Location: item.Location,
			Status:   models.StatusMisplaced,
		})
		if err != nil {
			return MisplacedResult{}, err
		}
		res.Marked = append(res.Marked, entry)
	}

	in.state = InProgress
	res.Status = statusOf(task, in)
	w.publish(res.Status)
	return res, nil
}

// Cancel discards a pending misplaced confirmation. It changes nothing when
// no confirmation is pending.
func (w *Workflow) Cancel(ctx context.Context, taskID string) (Status, error) {
	task, err := w.task(ctx, taskID)
	if err != nil {
		return Status{}, err
	}

	w.mu.Lock()
	in := w.instance(taskID)
	changed := in.state == AwaitingMisplacedConfirmation
	if changed {
		in.state = InProgress
	}
	st := statusOf(task, in)
	w.mu.Unlock()

	if changed {
		w.publish(st)
	}
	return st, nil
}

// AddItem creates a new registry item and appends it to the checklist in one
// step. The new item starts unchecked.
func (w *Workflow) AddItem(ctx context.Context, taskID string, in NewItem) (*models.Item, error) {
	name := strings.TrimSpace(in.Name)
	owner := strings.TrimSpace(in.Owner)
	location := strings.TrimSpace(in.Location)
	switch {
	case name == "":
		return nil, apperr.Required("name")
	case owner == "":
		return nil, apperr.Required("owner")
	case location == "":
		return nil, apperr.Required("location")
	}
	status, err := in.InitialStatus()
	if err != nil {
		return nil, err
	}
	if _, err := w.task(ctx, taskID); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:       w.newID(),
		Name:     name,
		Owner:    owner,
		Location: location,
		Status:   status,
		HasTag:   in.HasTag,
	}
	if err := w.registry.CreateInTask(ctx, taskID, item); err != nil {
		return nil, fmt.Errorf("add item to %s: %w", taskID, err)
	}
	return item, nil
}

// UncheckedCount returns the number of unchecked items in the task
func (w *Workflow) UncheckedCount(ctx context.Context, taskID string) (int, error) {
	st, err := w.Status(ctx, taskID)
	if err != nil {
		return 0, err
	}
	return st.Unchecked, nil
}
