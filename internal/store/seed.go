package store

import (
	"time"

	"homebase/internal/models"
)

// Household is a full set of records used to seed an empty store.
type Household struct {
	Profiles []models.Profile
	Items    []models.Item
	Tasks    []models.Task
	History  []models.HistoryEntry // most-recent-first
}

func scheduled(hhmm string) *models.TimeOfDay {
	t := models.MustTimeOfDay(hhmm)
	return &t
}

func taskItems(taskID string, pairs ...string) []models.TaskItem {
	items := make([]models.TaskItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, models.TaskItem{TaskID: taskID, ItemID: pairs[i], Name: pairs[i+1], Position: len(items)})
	}
	return items
}

// DefaultHousehold returns the three-person demo household.
func DefaultHousehold() Household {
	profiles := []models.Profile{
		{
			ID:         "1",
			Name:       "Alex",
			Role:       "Working Parent",
			Avatar:     "https://placehold.co/100x100.png",
			Routine:    "Leaves for office at 8:30 AM. Returns at 6:00 PM.",
			Essentials: models.StringSlice{"Laptop Bag", "Car Keys", "Office ID"},
		},
		{
			ID:         "2",
			Name:       "Leo",
			Role:       "School Kid",
			Avatar:     "https://placehold.co/100x100.png",
			Routine:    "Goes to school at 7:30 AM. Returns at 3:00 PM.",
			Essentials: models.StringSlice{"School Bag", "Lunch Box", "Water Bottle"},
		},
		{
			ID:         "3",
			Name:       "Grandma May",
			Role:       "Elderly",
			Avatar:     "https://placehold.co/100x100.png",
			Routine:    "Morning walk at 7:00 AM. Evening stroll at 5:00 PM.",
			Essentials: models.StringSlice{"Reading Glasses", "Walking Cane", "Medication Box"},
		},
	}

	items := []models.Item{
		{ID: "item-1", Name: "Laptop Bag", Owner: "Alex", Location: "Study Room", Status: models.StatusInPlace, HasTag: true},
		{ID: "item-2", Name: "Car Keys", Owner: "Alex", Location: "Kitchen Counter", Status: models.StatusInPlace, HasTag: true},
		{ID: "item-3", Name: "School Bag", Owner: "Leo", Location: "Leo's Room", Status: models.StatusInPlace, HasTag: true},
		{ID: "item-4", Name: "Lunch Box", Owner: "Leo", Location: "Kitchen Counter", Status: models.StatusMisplaced},
		{ID: "item-5", Name: "Reading Glasses", Owner: "Grandma May", Location: "Living Room Sofa", Status: models.StatusInPlace},
		{ID: "item-6", Name: "Walking Cane", Owner: "Grandma May", Location: "Entrance", Status: models.StatusInPlace},
		{ID: "item-x1", Name: "Water Bottle", Owner: "Leo", Location: "Kitchen Counter", Status: models.StatusInPlace},
		{ID: "item-x2", Name: "Homework Folder", Owner: "Leo", Location: "Leo's Room", Status: models.StatusInPlace},
		{ID: "item-y1", Name: "Office ID", Owner: "Alex", Location: "Study Room", Status: models.StatusInPlace},
		{ID: "item-y2", Name: "Wallet", Owner: "Alex", Location: "Entryway Table", Status: models.StatusInPlace, HasTag: true},
		{ID: "item-z1", Name: "House Keys", Owner: "Grandma May", Location: "Key Hook", Status: models.StatusInPlace},
		{ID: "item-z2", Name: "Light Jacket", Owner: "Grandma May", Location: "Closet", Status: models.StatusInPlace},
	}
	for i := range items {
		items[i].Position = i
	}

	tasks := []models.Task{
		{
			ID:            "cl-1",
			Kind:          models.TaskKindChecklist,
			Title:         "Morning School Run",
			Description:   "For Leo before he leaves for school.",
			ScheduledTime: scheduled("07:15"),
			Items:         taskItems("cl-1", "item-3", "School Bag", "item-4", "Lunch Box", "item-x1", "Water Bottle", "item-x2", "Homework Folder"),
		},
		{
			ID:            "cl-2",
			Kind:          models.TaskKindChecklist,
			Title:         "Work Departure",
			Description:   "For Alex before leaving for the office.",
			ScheduledTime: scheduled("08:30"),
			Items:         taskItems("cl-2", "item-1", "Laptop Bag", "item-2", "Car Keys", "item-y1", "Office ID", "item-y2", "Wallet"),
		},
		{
			ID:            "cl-3",
			Kind:          models.TaskKindChecklist,
			Title:         "Evening Walk",
			Description:   "For Grandma May's evening stroll.",
			ScheduledTime: scheduled("17:00"),
			Items:         taskItems("cl-3", "item-5", "Reading Glasses", "item-z1", "House Keys", "item-z2", "Light Jacket"),
		},
		{
			ID:            "cl-4",
			Kind:          models.TaskKindChecklist,
			Title:         "Review Homework",
			Description:   "Check Leo's homework.",
			ScheduledTime: scheduled("19:00"),
			Items:         taskItems("cl-4", "item-x2", "Homework Folder"),
		},
	}
	for i := range tasks {
		tasks[i].Position = i
	}

	history := []models.HistoryEntry{
		{ID: "h-1", Timestamp: time.Date(2024, 7, 28, 9, 0, 0, 0, time.UTC), ItemID: "item-2", ItemName: "Car Keys", User: "Alex", Location: "Kitchen Counter", Status: models.StatusInPlace},
		{ID: "h-2", Timestamp: time.Date(2024, 7, 28, 8, 30, 0, 0, time.UTC), ItemID: "item-4", ItemName: "Lunch Box", User: "Leo", Location: "Dining Table", Status: models.StatusMisplaced},
		{ID: "h-3", Timestamp: time.Date(2024, 7, 27, 17, 0, 0, 0, time.UTC), ItemID: "item-5", ItemName: "Reading Glasses", User: "Grandma May", Location: "Living Room Sofa", Status: models.StatusInPlace},
		{ID: "h-4", Timestamp: time.Date(2024, 7, 27, 8, 0, 0, 0, time.UTC), ItemID: "item-1", ItemName: "Laptop Bag", User: "Alex", Location: "Study Room", Status: models.StatusInPlace},
		{ID: "h-5", Timestamp: time.Date(2024, 7, 26, 15, 0, 0, 0, time.UTC), ItemID: "item-3", ItemName: "School Bag", User: "Leo", Location: "Leo's Room", Status: models.StatusInPlace},
	}

	return Household{Profiles: profiles, Items: items, Tasks: tasks, History: history}
}
