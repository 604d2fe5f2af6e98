package store

import (
	"context"
	"testing"
	"time"

	"homebase/internal/apperr"
	"homebase/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededMemoryKeepsFixtureOrder(t *testing.T) {
	ctx := context.Background()
	m := NewSeededMemory()

	profiles, err := m.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Alex", profiles[0].Name)

	items, err := m.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, "item-z2", items[len(items)-1].ID)

	history, err := m.ListHistory(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "h-1", history[0].ID)
	assert.Equal(t, "h-5", history[4].ID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewSeededMemory()

	task, err := m.GetTask(ctx, "cl-1")
	require.NoError(t, err)
	task.Items[0].Name = "changed"
	task.ScheduledTime.Hour = 3

	again, err := m.GetTask(ctx, "cl-1")
	require.NoError(t, err)
	assert.Equal(t, "School Bag", again.Items[0].Name)
	assert.Equal(t, 7, again.ScheduledTime.Hour)

	p, err := m.GetProfile(ctx, "1")
	require.NoError(t, err)
	p.Essentials[0] = "changed"
	p2, _ := m.GetProfile(ctx, "1")
	assert.Equal(t, "Laptop Bag", p2.Essentials[0])
}

func TestMemoryAddTaskItemWritesBoth(t *testing.T) {
	ctx := context.Background()
	m := NewSeededMemory()

	item := &models.Item{ID: "item-new", Name: "Umbrella", Owner: "Alex", Location: "Hallway", Status: models.StatusInPlace}
	require.NoError(t, m.AddTaskItem(ctx, "cl-2", item))

	got, err := m.GetItem(ctx, "item-new")
	require.NoError(t, err)
	assert.Equal(t, "Umbrella", got.Name)

	task, err := m.GetTask(ctx, "cl-2")
	require.NoError(t, err)
	last := task.Items[len(task.Items)-1]
	assert.Equal(t, "item-new", last.ItemID)
	assert.Equal(t, "Umbrella", last.Name)
}

func TestMemoryAddTaskItemFailsAtomically(t *testing.T) {
	ctx := context.Background()
	m := NewSeededMemory()
	before, _ := m.ListItems(ctx)

	err := m.AddTaskItem(ctx, "missing", &models.Item{ID: "item-new", Name: "Umbrella", Owner: "Alex", Location: "Hallway", Status: models.StatusInPlace})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = m.AddTaskItem(ctx, "cl-2", &models.Item{ID: "item-1", Name: "Dup", Owner: "Alex", Location: "Hallway", Status: models.StatusInPlace})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = m.AddTaskItem(ctx, "cl-2", &models.Item{ID: "item-new", Name: "Umbrella", Location: "Hallway", Status: models.StatusInPlace})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	after, _ := m.ListItems(ctx)
	assert.Equal(t, len(before), len(after))
	task, _ := m.GetTask(ctx, "cl-2")
	assert.Len(t, task.Items, 4)
}

func TestMemoryUpdateItem(t *testing.T) {
	ctx := context.Background()
	m := NewSeededMemory()

	err := m.UpdateItem(ctx, &models.Item{ID: "nope", Status: models.StatusInPlace})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = m.UpdateItem(ctx, &models.Item{ID: "item-1", Status: "Lost"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	item, _ := m.GetItem(ctx, "item-1")
	item.Location = "Car"
	item.Status = models.StatusMisplaced
	require.NoError(t, m.UpdateItem(ctx, item))

	items, _ := m.ListItems(ctx)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, "Car", items[0].Location)
	assert.Equal(t, models.StatusMisplaced, items[0].Status)
}

func TestMemoryHistoryPrependsAndFilters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)

	for i, user := range []string{"Alex", "Leo", "Alex"} {
		require.NoError(t, m.AppendHistory(ctx, &models.HistoryEntry{
			ID:        "h-" + user + string(rune('a'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			User:      user,
			Status:    models.StatusInPlace,
		}))
	}

	all, err := m.ListHistory(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "h-Alexc", all[0].ID)

	alex, _ := m.ListHistory(ctx, models.HistoryFilter{User: "Alex"})
	assert.Len(t, alex, 2)

	from := base.Add(30 * time.Minute)
	recent, _ := m.ListHistory(ctx, models.HistoryFilter{From: &from})
	assert.Len(t, recent, 2)

	to := base.Add(90 * time.Minute)
	window, _ := m.ListHistory(ctx, models.HistoryFilter{From: &from, To: &to})
	require.Len(t, window, 1)
	assert.Equal(t, "Leo", window[0].User)

	err = m.AppendHistory(ctx, &models.HistoryEntry{ID: "h-Alexa"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMemoryCreateValidation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assert.ErrorIs(t, m.CreateTask(ctx, &models.Task{ID: "t", Kind: models.TaskKindTodo}), apperr.ErrValidation)
	assert.ErrorIs(t, m.CreateTask(ctx, &models.Task{ID: "t", Title: "x", Kind: "chore"}), apperr.ErrValidation)
	assert.ErrorIs(t, m.CreateProfile(ctx, &models.Profile{ID: "p"}), apperr.ErrValidation)
	assert.ErrorIs(t, m.CreateItem(ctx, &models.Item{ID: "i", Name: "Keys", Location: "Hook", Status: models.StatusInPlace}), apperr.ErrValidation)

	require.NoError(t, m.CreateTask(ctx, &models.Task{ID: "t", Title: "Trash night", Kind: models.TaskKindTodo}))
	assert.ErrorIs(t, m.CreateTask(ctx, &models.Task{ID: "t", Title: "again", Kind: models.TaskKindTodo}), apperr.ErrValidation)
}
