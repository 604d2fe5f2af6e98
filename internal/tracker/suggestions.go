package tracker

import (
	"context"
	"log"
	"sort"

	"homebase/internal/models"
	"homebase/internal/suggest"
)

// ProfileReminders asks the generator for reminders about a profile's
// essentials. The collaborator runs outside the lock on a snapshot, and a
// failure leaves all state as it was.
func (t *Tracker) ProfileReminders(ctx context.Context, profileID string) ([]suggest.Reminder, error) {
	t.mu.Lock()
	profile, err := t.store.GetProfile(ctx, profileID)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	items, err := t.registry.List(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	owned := make([]models.Item, 0, len(items))
	for _, it := range items {
		if profile.Essentials.Contains(it.Name) || it.Owner == profile.Name {
			owned = append(owned, it)
		}
	}
	out, err := t.suggestions.Generator.Generate(ctx, suggest.Request{Profile: *profile, Items: owned, Now: t.now()})
	if err != nil {
		t.metrics.RecordSuggestionFailure("reminders")
		log.Printf("tracker: reminders for %s failed: %v", profile.Name, err)
		return nil, err
	}
	return out, nil
}

// HouseholdReminders asks for one set of reminders covering every profile,
// given the full item registry
func (t *Tracker) HouseholdReminders(ctx context.Context) ([]suggest.Reminder, error) {
	t.mu.Lock()
	profiles, err := t.store.ListProfiles(ctx)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	items, err := t.registry.List(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []suggest.Reminder{}, nil
	}

	out, err := t.suggestions.Generator.Generate(ctx, suggest.Request{Profiles: profiles, Items: items, Now: t.now()})
	if err != nil {
		t.metrics.RecordSuggestionFailure("reminders")
		log.Printf("tracker: household reminders failed: %v", err)
		return nil, err
	}
	return out, nil
}

// AgendaReminders generates reminders for every scheduled task, earliest
// first, each addressed to the profile the task is for. Any failure aborts
// the whole agenda.
func (t *Tracker) AgendaReminders(ctx context.Context) ([]suggest.Reminder, error) {
	t.mu.Lock()
	tasks, err := t.store.ListTasks(ctx)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	profiles, err := t.store.ListProfiles(ctx)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	items, err := t.registry.List(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	scheduled := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ScheduledTime != nil {
			scheduled = append(scheduled, task)
		}
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].ScheduledTime.String() < scheduled[j].ScheduledTime.String()
	})

	now := t.now()
	out := make([]suggest.Reminder, 0, len(scheduled))
	for i := range scheduled {
		task := scheduled[i]
		profile, ok := suggest.ProfileForTask(task, profiles)
		if !ok {
			break
		}
		rs, err := t.suggestions.Generator.Generate(ctx, suggest.Request{Profile: profile, Task: &task, Items: items, Now: now})
		if err != nil {
			t.metrics.RecordSuggestionFailure("agenda")
			log.Printf("tracker: agenda reminder for %q failed: %v", task.Title, err)
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// PredictLocation asks the predictor where a misplaced item might be
func (t *Tracker) PredictLocation(ctx context.Context, in suggest.PredictionInput) (*suggest.Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := t.suggestions.Predictor.Predict(ctx, in)
	if err != nil {
		t.metrics.RecordSuggestionFailure("predict")
		return nil, err
	}
	return p, nil
}
