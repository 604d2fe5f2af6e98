package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebase/internal/apperr"
	"homebase/internal/models"
)

func openTestStore(t *testing.T, seed bool) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:", seed)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "", false)
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, true)
	require.NoError(t, s.Seed(ctx))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Alex", profiles[0].Name)
	assert.Equal(t, models.StringSlice{"Laptop Bag", "Car Keys", "Office ID"}, profiles[0].Essentials)

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 12)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, models.StatusMisplaced, items[3].Status)
}

func TestTasksRoundTripWithItems(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, true)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "cl-1", tasks[0].ID)
	require.NotNil(t, tasks[0].ScheduledTime)
	assert.Equal(t, "07:15", tasks[0].ScheduledTime.String())
	assert.Equal(t, []string{"School Bag", "Lunch Box", "Water Bottle", "Homework Folder"}, tasks[0].ItemNames())

	todo := &models.Task{ID: "todo-1", Kind: models.TaskKindTodo, Title: "Water plants"}
	require.NoError(t, s.CreateTask(ctx, todo))
	got, err := s.GetTask(ctx, "todo-1")
	require.NoError(t, err)
	assert.Nil(t, got.ScheduledTime)
	assert.Empty(t, got.Items)

	_, err = s.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddTaskItemIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, true)

	item := &models.Item{ID: "item-new", Name: "Scarf", Owner: "Grandma May", Location: "Closet", Status: models.StatusInPlace}
	require.NoError(t, s.AddTaskItem(ctx, "cl-3", item))

	task, err := s.GetTask(ctx, "cl-3")
	require.NoError(t, err)
	require.Len(t, task.Items, 4)
	assert.Equal(t, "item-new", task.Items[3].ItemID)

	orphan := &models.Item{ID: "item-orphan", Name: "Hat", Owner: "Leo", Location: "Hall", Status: models.StatusInPlace}
	err = s.AddTaskItem(ctx, "cl-missing", orphan)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = s.GetItem(ctx, "item-orphan")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	dup := &models.Item{ID: "item-1", Name: "Hat", Owner: "Leo", Location: "Hall", Status: models.StatusInPlace}
	err = s.AddTaskItem(ctx, "cl-3", dup)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	task, err = s.GetTask(ctx, "cl-3")
	require.NoError(t, err)
	assert.Len(t, task.Items, 4)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, true)

	item, err := s.GetItem(ctx, "item-2")
	require.NoError(t, err)
	item.Location = "Coat Pocket"
	item.Status = models.StatusMisplaced
	require.NoError(t, s.UpdateItem(ctx, item))

	got, err := s.GetItem(ctx, "item-2")
	require.NoError(t, err)
	assert.Equal(t, "Coat Pocket", got.Location)
	assert.Equal(t, models.StatusMisplaced, got.Status)

	err = s.UpdateItem(ctx, &models.Item{ID: "missing", Status: models.StatusInPlace})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = s.UpdateItem(ctx, &models.Item{ID: "item-2", Status: "Lost"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestHistoryOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, true)

	entry := &models.HistoryEntry{
		ID:        "h-new",
		Timestamp: time.Date(2024, 8, 1, 18, 0, 0, 0, time.UTC),
		ItemID:    "item-2",
		ItemName:  "Car Keys",
		User:      "Alex",
		Location:  "Kitchen Counter",
		Status:    models.StatusInPlace,
	}
	require.NoError(t, s.AppendHistory(ctx, entry))
	assert.Equal(t, uint64(6), entry.Seq)

	all, err := s.ListHistory(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "h-new", all[0].ID)
	assert.Equal(t, "h-1", all[1].ID)
	assert.Equal(t, "h-5", all[5].ID)

	alex, err := s.ListHistory(ctx, models.HistoryFilter{User: "Alex"})
	require.NoError(t, err)
	assert.Len(t, alex, 3)

	from := time.Date(2024, 7, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 27, 23, 59, 59, 0, time.UTC)
	day, err := s.ListHistory(ctx, models.HistoryFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "h-3", day[0].ID)

	assert.ErrorIs(t, s.AppendHistory(ctx, entry), apperr.ErrValidation)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, false)

	assert.ErrorIs(t, s.CreateItem(ctx, &models.Item{ID: "x", Name: "Keys", Location: "Hall", Status: models.StatusInPlace}), apperr.ErrValidation)
	assert.ErrorIs(t, s.CreateProfile(ctx, &models.Profile{ID: "p"}), apperr.ErrValidation)
	assert.ErrorIs(t, s.CreateTask(ctx, &models.Task{ID: "t", Kind: models.TaskKindTodo}), apperr.ErrValidation)

	require.NoError(t, s.CreateProfile(ctx, &models.Profile{ID: "p", Name: "Sam", Essentials: models.StringSlice{}}))
	assert.ErrorIs(t, s.CreateProfile(ctx, &models.Profile{ID: "p", Name: "Sam"}), apperr.ErrValidation)

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}
