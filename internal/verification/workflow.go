// Package verification runs the return-home check: once a profile's routine
// says they are back, each of their essential items is confirmed where it is
// or updated to where it actually is.
package verification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"homebase/internal/apperr"
	"homebase/internal/history"
	"homebase/internal/models"
	"homebase/internal/registry"
	"homebase/internal/routine"
	"homebase/internal/store"
)

// DefaultStaleness is how long after a return trigger a profile is still offered
const DefaultStaleness = 4 * time.Hour

// PairState is the verification state of one (profile, item) pair
type PairState string

const (
	Unverified PairState = "Unverified"
	Confirmed  PairState = "Confirmed"
)

// ItemCheck is one essential item awaiting or past verification
type ItemCheck struct {
	Item models.Item `json:"item"`
	// Updated is true when the pair was confirmed through a location update
	Updated bool      `json:"updated"`
	State   PairState `json:"state"`
}

// Check is a profile currently offered for verification
type Check struct {
	Profile  models.Profile                   `json:"profile"`
	Trigger  time.Time                        `json:"trigger"`
	Items    []ItemCheck                      `json:"items"`
	Warnings []registry.AmbiguousMatchWarning `json:"warnings,omitempty"`
}

// Unverified counts the items still to confirm
func (c Check) Unverified() int {
	n := 0
	for _, ic := range c.Items {
		if ic.State != Confirmed {
			n++
		}
	}
	return n
}

type sessionKey struct {
	profileID string
	trigger   int64
}

type session struct {
	trigger time.Time
	pairs   map[string]*pair
}

type pair struct {
	state   PairState
	updated bool
}

// Workflow tracks verification sessions. A session is keyed by the profile
// and the trigger instant, so the same profile is verified afresh each day.
type Workflow struct {
	store     store.RecordStore
	registry  *registry.Registry
	history   *history.Recorder
	now       func() time.Time
	staleness time.Duration

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

// Option configures a Workflow
type Option func(*Workflow)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithStaleness overrides DefaultStaleness
func WithStaleness(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.staleness = d
		}
	}
}

// New creates a verification workflow
func New(s store.RecordStore, reg *registry.Registry, rec *history.Recorder, opts ...Option) *Workflow {
	w := &Workflow{
		store:     s,
		registry:  reg,
		history:   rec,
		now:       time.Now,
		staleness: DefaultStaleness,
		sessions:  make(map[sessionKey]*session),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Staleness returns the configured window
func (w *Workflow) Staleness() time.Duration {
	return w.staleness
}

// Pending lists the profiles currently offered for verification, in profile
// order. A profile is offered when now is strictly after its return trigger
// today, less than the staleness window has elapsed and at least one of its
// essential items is still unverified.
func (w *Workflow) Pending(ctx context.Context) ([]Check, error) {
	return w.PendingAt(ctx, w.now())
}

// PendingAt is Pending evaluated at an explicit instant
func (w *Workflow) PendingAt(ctx context.Context, now time.Time) ([]Check, error) {
	profiles, err := w.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	items, err := w.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)

	var checks []Check
	for _, p := range profiles {
		c, ok := w.checkFor(p, items, now)
		if ok {
			checks = append(checks, c)
		}
	}
	return checks, nil
}

// Confirm marks the item as verified where it is. The item is set In Place
// if it was not already; its location is left unchanged.
func (w *Workflow) Confirm(ctx context.Context, profileID, itemID string) (*models.Item, error) {
	return w.resolve(ctx, profileID, itemID, "confirm", func() (*models.Item, error) {
		item, err := w.registry.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if item.Status == models.StatusInPlace {
			return item, nil
		}
		return w.registry.SetStatus(ctx, itemID, models.StatusInPlace)
	})
}

// Update records the item's actual location, sets it In Place and marks the
// pair verified.
func (w *Workflow) Update(ctx context.Context, profileID, itemID, location string) (*models.Item, error) {
	return w.resolve(ctx, profileID, itemID, "update", func() (*models.Item, error) {
		return w.registry.Relocate(ctx, itemID, location)
	})
}

func (w *Workflow) resolve(ctx context.Context, profileID, itemID, op string, mutate func() (*models.Item, error)) (*models.Item, error) {
	profile, err := w.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	items, err := w.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	check, ok := w.checkFor(*profile, items, now)
	if !ok {
		return nil, &apperr.StateError{Subject: "verification for " + profile.Name, State: "not pending", Op: op}
	}
	var target *ItemCheck
	for i := range check.Items {
		if check.Items[i].Item.ID == itemID {
			target = &check.Items[i]
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("verification item", itemID)
	}
	if target.State == Confirmed {
		return nil, &apperr.StateError{Subject: "item " + itemID, State: string(Confirmed), Op: op}
	}

	item, err := mutate()
	if err != nil {
		return nil, err
	}
	if _, err := w.history.Append(ctx, history.Draft{
		ItemID:   item.ID,
		ItemName: item.Name,
		User:     profile.Name,
		Location: item.Location,
		Status:   item.Status,
	}); err != nil {
		return nil, err
	}

	sess := w.sessions[sessionKey{profileID: profile.ID, trigger: check.Trigger.Unix()}]
	sess.pairs[itemID] = &pair{state: Confirmed, updated: op == "update"}
	return item, nil
}

// checkFor builds the profile's check if it is inside its window and still
// has unverified items. Callers hold w.mu.
func (w *Workflow) checkFor(p models.Profile, items []models.Item, now time.Time) (Check, bool) {
	tod, ok := routine.ParseReturnTrigger(p.Routine)
	if !ok {
		return Check{}, false
	}
	trigger := tod.On(now)
	if !now.After(trigger) || now.Sub(trigger) >= w.staleness {
		return Check{}, false
	}

	matched, warnings := registry.MatchByName(p, items)
	for _, warn := range warnings {
		log.Printf("verification: %s", warn)
	}
	if len(matched) == 0 {
		return Check{}, false
	}

	key := sessionKey{profileID: p.ID, trigger: trigger.Unix()}
	sess, ok := w.sessions[key]
	if !ok {
		sess = &session{trigger: trigger, pairs: make(map[string]*pair)}
		w.sessions[key] = sess
	}

	check := Check{Profile: p, Trigger: trigger, Warnings: warnings}
	for _, it := range matched {
		ic := ItemCheck{Item: it, State: Unverified}
		if pr, ok := sess.pairs[it.ID]; ok {
			ic.State = pr.state
			ic.Updated = pr.updated
		}
		check.Items = append(check.Items, ic)
	}
	if check.Unverified() == 0 {
		return Check{}, false
	}
	return check, true
}

// prune forgets sessions whose window has closed
func (w *Workflow) prune(now time.Time) {
	for k, s := range w.sessions {
		if now.Sub(s.trigger) >= w.staleness || now.Before(s.trigger) {
			delete(w.sessions, k)
		}
	}
}
