package suggest

import (
	"fmt"
	"strings"

	"homebase/internal/models"
)

// ProfileForTask picks who an upcoming task is for: the first profile whose
// essentials share a name with the task's items, else the first profile.
// It returns false only when there are no profiles.
func ProfileForTask(task models.Task, profiles []models.Profile) (models.Profile, bool) {
	if len(profiles) == 0 {
		return models.Profile{}, false
	}
	names := task.ItemNames()
	for _, p := range profiles {
		for _, n := range names {
			if p.Essentials.Contains(n) {
				return p, true
			}
		}
	}
	return profiles[0], true
}

// UpcomingReminder is the banner shown for the first due task. It needs no
// model, so it is always available.
func UpcomingReminder(task models.Task, profile models.Profile, items []models.Item) Reminder {
	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	parts := make([]string, 0, len(task.Items))
	for _, ti := range task.Items {
		loc := "Unknown"
		if it, ok := byID[ti.ItemID]; ok && it.Location != "" {
			loc = it.Location
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", ti.Name, loc))
	}

	text := fmt.Sprintf("It's almost time for %q.", task.Title)
	if len(parts) > 0 {
		text += " Get your items ready: " + strings.Join(parts, ", ") + "."
	}
	return Reminder{
		Title:       "Upcoming Task: " + task.Title,
		Suggestion:  text,
		ProfileName: profile.Name,
	}
}
