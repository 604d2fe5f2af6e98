package schedule

import (
	"context"
	"log"
	"time"

	"homebase/internal/events"
	"homebase/internal/models"
	"homebase/internal/suggest"
	"homebase/internal/verification"
)

// Snapshot is the read-only state a tick evaluates
type Snapshot struct {
	Tasks    []models.Task
	Profiles []models.Profile
	Items    []models.Item
	Pending  []verification.Check
}

// Source supplies snapshots. It must not hand out live state.
type Source interface {
	Snapshot(ctx context.Context, now time.Time) (Snapshot, error)
}

// Report is the outcome of one tick
type Report struct {
	At       time.Time            `json:"at"`
	Due      []models.Task        `json:"due"`
	Upcoming *suggest.Reminder    `json:"upcoming,omitempty"`
	Pending  []verification.Check `json:"pending"`
}

// Loop re-evaluates due tasks and pending verifications on a fixed cadence
// and publishes the results. It never writes to the store.
type Loop struct {
	source    Source
	events    events.Publisher
	interval  time.Duration
	lookahead time.Duration
	now       func() time.Time
	onTick    func(Report)
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithInterval sets the tick cadence
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLookahead sets the due-task window
func WithLookahead(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.lookahead = d
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) { l.now = now }
}

// OnTick registers a callback run after each successful tick
func OnTick(fn func(Report)) LoopOption {
	return func(l *Loop) { l.onTick = fn }
}

// NewLoop creates a scheduler loop
func NewLoop(src Source, pub events.Publisher, opts ...LoopOption) *Loop {
	if pub == nil {
		pub = events.Discard{}
	}
	l := &Loop{
		source:    src,
		events:    pub,
		interval:  DefaultInterval,
		lookahead: DefaultLookahead,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run ticks immediately and then every interval until ctx is done. Tick
// errors are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Printf("scheduler: started (interval %s, lookahead %s)", l.interval, l.lookahead)
	for {
		if _, err := l.Tick(ctx); err != nil && ctx.Err() == nil {
			log.Printf("scheduler: tick failed: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Printf("scheduler: stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick evaluates one snapshot and publishes tasks.due and
// verification.pending. Evaluating the same snapshot at the same instant
// always yields the same report.
func (l *Loop) Tick(ctx context.Context) (Report, error) {
	now := l.now()
	snap, err := l.source.Snapshot(ctx, now)
	if err != nil {
		return Report{}, err
	}

	r := Report{At: now, Due: FindDueTasks(snap.Tasks, now, l.lookahead), Pending: snap.Pending}
	if r.Pending == nil {
		r.Pending = []verification.Check{}
	}
	if first, ok := FirstDue(r.Due); ok {
		if profile, ok := suggest.ProfileForTask(first, snap.Profiles); ok {
			banner := suggest.UpcomingReminder(first, profile, snap.Items)
			r.Upcoming = &banner
		}
	}

	l.events.Publish(events.KindTasksDue, r)
	l.events.Publish(events.KindVerificationPending, r.Pending)
	if l.onTick != nil {
		l.onTick(r)
	}
	return r, nil
}
