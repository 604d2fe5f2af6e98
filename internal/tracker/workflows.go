package tracker

import (
	"context"

	"homebase/internal/checklist"
	"homebase/internal/models"
	"homebase/internal/verification"
)

// ChecklistStatus returns the checked state of a task
func (t *Tracker) ChecklistStatus(ctx context.Context, taskID string) (checklist.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklists.Status(ctx, taskID)
}

// CheckItem sets or clears one item's checked mark
func (t *Tracker) CheckItem(ctx context.Context, taskID, itemID string, checked bool) (checklist.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklists.Check(ctx, taskID, itemID, checked)
}

// AttemptComplete completes the task or asks for misplaced confirmation
func (t *Tracker) AttemptComplete(ctx context.Context, taskID string) (checklist.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.checklists.AttemptComplete(ctx, taskID)
	if err != nil {
		return st, err
	}
	if st.State == checklist.Completed {
		t.metrics.RecordChecklistOutcome("completed")
	} else {
		t.metrics.RecordChecklistOutcome("awaiting_confirmation")
	}
	return st, nil
}

// ConfirmMisplaced marks the unchecked items of a task misplaced
func (t *Tracker) ConfirmMisplaced(ctx context.Context, taskID string) (checklist.MisplacedResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, err := t.checklists.ConfirmMisplaced(ctx, taskID)
	if err != nil {
		return res, err
	}
	t.metrics.RecordChecklistOutcome("misplaced_confirmed")
	return res, nil
}

// CancelCompletion discards a pending misplaced confirmation
func (t *Tracker) CancelCompletion(ctx context.Context, taskID string) (checklist.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	before, err := t.checklists.Status(ctx, taskID)
	if err != nil {
		return before, err
	}
	st, err := t.checklists.Cancel(ctx, taskID)
	if err == nil && before.State == checklist.AwaitingMisplacedConfirmation {
		t.metrics.RecordChecklistOutcome("cancelled")
	}
	return st, err
}

// AddTaskItem creates an item and appends it to a task
func (t *Tracker) AddTaskItem(ctx context.Context, taskID string, in checklist.NewItem) (*models.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklists.AddItem(ctx, taskID, in)
}

// PendingVerifications lists the profiles waiting to verify their items
func (t *Tracker) PendingVerifications(ctx context.Context) ([]verification.Check, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.verify.Pending(ctx)
}

// ConfirmItem verifies an item where it is
func (t *Tracker) ConfirmItem(ctx context.Context, profileID, itemID string) (*models.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, err := t.verify.Confirm(ctx, profileID, itemID)
	if err != nil {
		return nil, err
	}
	t.metrics.RecordVerification("confirm")
	return item, nil
}

// UpdateItemLocation verifies an item at a new location
func (t *Tracker) UpdateItemLocation(ctx context.Context, profileID, itemID, location string) (*models.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, err := t.verify.Update(ctx, profileID, itemID, location)
	if err != nil {
		return nil, err
	}
	t.metrics.RecordVerification("update")
	return item, nil
}
