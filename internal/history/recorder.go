// Package history appends item status transitions to the audit log.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"homebase/internal/apperr"
	"homebase/internal/events"
	"homebase/internal/models"
	"homebase/internal/store"
)

// Draft is a history entry before it has an id and timestamp
type Draft struct {
	ItemID   string
	ItemName string
	User     string
	Location string
	Status   models.ItemStatus
}

// Recorder appends entries; it never edits or removes them
type Recorder struct {
	store  store.RecordStore
	events events.Publisher
	now    func() time.Time

	mu       sync.Mutex
	lastNano int64
}

// NewRecorder creates a recorder. A nil clock uses time.Now.
func NewRecorder(s store.RecordStore, pub events.Publisher, now func() time.Time) *Recorder {
	if pub == nil {
		pub = events.Discard{}
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: s, events: pub, now: now}
}

// Append stamps the draft with the current time and a unique id and stores
// it at the head of the log.
func (r *Recorder) Append(ctx context.Context, d Draft) (models.HistoryEntry, error) {
	if strings.TrimSpace(d.ItemName) == "" {
		return models.HistoryEntry{}, apperr.Required("item")
	}
	if !models.IsItemStatusValid(d.Status) {
		return models.HistoryEntry{}, &apperr.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", d.Status)}
	}

	ts := r.now()
	entry := models.HistoryEntry{
		ID:        r.nextID(ts, d.ItemID),
		Timestamp: ts,
		ItemID:    d.ItemID,
		ItemName:  d.ItemName,
		User:      d.User,
		Location:  d.Location,
		Status:    d.Status,
	}
	if err := r.store.AppendHistory(ctx, &entry); err != nil {
		return models.HistoryEntry{}, fmt.Errorf("append history: %w", err)
	}
	r.events.Publish(events.KindHistoryAppended, entry)
	return entry, nil
}

// List returns the log most-recent-first, narrowed by filter
func (r *Recorder) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	return r.store.ListHistory(ctx, filter)
}

// nextID builds "h-<unixnano>-<itemID>". The nanosecond component is forced
// to increase so two appends in the same tick cannot collide.
func (r *Recorder) nextID(ts time.Time, itemID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := ts.UnixNano()
	if n <= r.lastNano {
		n = r.lastNano + 1
	}
	r.lastNano = n
	if itemID == "" {
		return fmt.Sprintf("h-%d", n)
	}
	return fmt.Sprintf("h-%d-%s", n, itemID)
}
