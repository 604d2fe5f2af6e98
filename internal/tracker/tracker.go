// Package tracker is the single entry point for every read and write the
// API, CLI and scheduler make. One mutex serialises them so no caller ever
// sees a half-updated registry.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"homebase/internal/apperr"
	"homebase/internal/checklist"
	"homebase/internal/events"
	"homebase/internal/history"
	"homebase/internal/models"
	"homebase/internal/registry"
	"homebase/internal/schedule"
	"homebase/internal/store"
	"homebase/internal/suggest"
	"homebase/internal/verification"
)

// Metrics receives workflow outcomes. monitoring.Collector implements it.
type Metrics interface {
	RecordChecklistOutcome(outcome string)
	RecordVerification(action string)
	RecordSuggestionFailure(kind string)
}

type noMetrics struct{}

func (noMetrics) RecordChecklistOutcome(string)  {}
func (noMetrics) RecordVerification(string)      {}
func (noMetrics) RecordSuggestionFailure(string) {}

// Options configures a Tracker. Zero values select defaults.
type Options struct {
	Events      events.Publisher
	Metrics     Metrics
	Suggestions suggest.Services
	Now         func() time.Time
	Staleness   time.Duration
	Lookahead   time.Duration
}

// Tracker composes the registry, history, verification and checklist
// workflows over one record store
type Tracker struct {
	mu sync.Mutex

	store       store.RecordStore
	registry    *registry.Registry
	history     *history.Recorder
	verify      *verification.Workflow
	checklists  *checklist.Workflow
	suggestions suggest.Services
	events      events.Publisher
	metrics     Metrics
	now         func() time.Time
	lookahead   time.Duration
	newID       func() string
}

// New wires the workflows together
func New(s store.RecordStore, opts Options) *Tracker {
	if opts.Events == nil {
		opts.Events = events.Discard{}
	}
	if opts.Metrics == nil {
		opts.Metrics = noMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lookahead <= 0 {
		opts.Lookahead = schedule.DefaultLookahead
	}
	if opts.Suggestions.Generator == nil {
		opts.Suggestions.Generator = suggest.Disabled{}
	}
	if opts.Suggestions.Predictor == nil {
		opts.Suggestions.Predictor = suggest.Disabled{}
	}

	reg := registry.New(s, opts.Events)
	rec := history.NewRecorder(s, opts.Events, opts.Now)
	return &Tracker{
		store:    s,
		registry: reg,
		history:  rec,
		verify: verification.New(s, reg, rec,
			verification.WithClock(opts.Now),
			verification.WithStaleness(opts.Staleness),
		),
		checklists:  checklist.New(s, reg, rec, opts.Events),
		suggestions: opts.Suggestions,
		events:      opts.Events,
		metrics:     opts.Metrics,
		now:         opts.Now,
		lookahead:   opts.Lookahead,
		newID:       func() string { return uuid.New().String() },
	}
}

// Now reads the tracker's clock
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Lookahead is the configured due-task window
func (t *Tracker) Lookahead() time.Duration {
	return t.lookahead
}

// Items lists the registry
func (t *Tracker) Items(ctx context.Context) ([]models.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.List(ctx)
}

// Item returns one registry item
func (t *Tracker) Item(ctx context.Context, id string) (*models.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Get(ctx, id)
}

// CreateItem adds a standalone item at the given location, In Place
// unless another status is requested
func (t *Tracker) CreateItem(ctx context.Context, in checklist.NewItem) (*models.Item, error) {
	status, err := in.InitialStatus()
	if err != nil {
		return nil, err
	}
	item := &models.Item{
		ID:       t.newID(),
		Name:     strings.TrimSpace(in.Name),
		Owner:    strings.TrimSpace(in.Owner),
		Location: strings.TrimSpace(in.Location),
		Status:   status,
		HasTag:   in.HasTag,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.registry.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Profiles lists the household members
func (t *Tracker) Profiles(ctx context.Context) ([]models.Profile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ListProfiles(ctx)
}

// ProfileInput is the payload for a new profile
type ProfileInput struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Avatar     string   `json:"avatar"`
	Routine    string   `json:"routine"`
	Essentials []string `json:"essentials"`
}

// CreateProfile adds a household member
func (t *Tracker) CreateProfile(ctx context.Context, in ProfileInput) (*models.Profile, error) {
	p := &models.Profile{
		ID:         t.newID(),
		Name:       strings.TrimSpace(in.Name),
		Role:       strings.TrimSpace(in.Role),
		Avatar:     in.Avatar,
		Routine:    strings.TrimSpace(in.Routine),
		Essentials: models.StringSlice(in.Essentials),
	}
	if p.Essentials == nil {
		p.Essentials = models.StringSlice{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Tasks lists checklists and to-dos
func (t *Tracker) Tasks(ctx context.Context) ([]models.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ListTasks(ctx)
}

// TaskInput is the payload for a new task. Items reference existing
// registry items by id.
type TaskInput struct {
	Kind        models.TaskKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	ItemIDs     []string        `json:"itemIds"`
}

// CreateTask adds a task, copying item names from the registry
func (t *Tracker) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	task := &models.Task{
		ID:          t.newID(),
		Kind:        in.Kind,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	if task.Kind == "" {
		task.Kind = models.TaskKindChecklist
	}
	if in.Time != "" {
		tod, err := models.ParseTimeOfDay(in.Time)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "time", Msg: err.Error()}
		}
		task.ScheduledTime = &tod
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	task.Items = make([]models.TaskItem, 0, len(in.ItemIDs))
	for i, id := range in.ItemIDs {
		item, err := t.registry.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		task.Items = append(task.Items, models.TaskItem{TaskID: task.ID, ItemID: item.ID, Name: item.Name, Position: i})
	}
	if err := t.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DueTasks returns every task coming due at now
func (t *Tracker) DueTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tasks, err := t.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.FindDueTasks(tasks, now, t.lookahead), nil
}

// Snapshot implements schedule.Source
func (t *Tracker) Snapshot(ctx context.Context, now time.Time) (schedule.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var snap schedule.Snapshot
	var err error
	if snap.Tasks, err = t.store.ListTasks(ctx); err != nil {
		return schedule.Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	if snap.Profiles, err = t.store.ListProfiles(ctx); err != nil {
		return schedule.Snapshot{}, fmt.Errorf("list profiles: %w", err)
	}
	if snap.Items, err = t.store.ListItems(ctx); err != nil {
		return schedule.Snapshot{}, fmt.Errorf("list items: %w", err)
	}
	if snap.Pending, err = t.verify.PendingAt(ctx, now); err != nil {
		return schedule.Snapshot{}, err
	}
	return snap, nil
}

// History returns the log most-recent-first
func (t *Tracker) History(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.List(ctx, filter)
}
