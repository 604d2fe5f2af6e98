// Package schedule decides which scheduled tasks are coming due and drives
// that decision on a recurring cadence.
package schedule

import (
	"time"

	"homebase/internal/models"
)

const (
	// DefaultLookahead is how far ahead of now a task counts as coming due.
	DefaultLookahead = 15 * time.Minute
	// DefaultInterval is the re-evaluation cadence of the loop.
	DefaultInterval = 60 * time.Second
)

// FindDueTasks returns, in input order, every task whose scheduled time today
// falls in (now, now+lookahead]. Tasks without a scheduled time never qualify.
//
// The task instant is always built on now's calendar date; a 23:50 task is not
// due at 00:02 the following day even with a large lookahead, and a 00:05 task
// is not due at 23:58. Times already past today wait for the next day.
func FindDueTasks(tasks []models.Task, now time.Time, lookahead time.Duration) []models.Task {
	horizon := now.Add(lookahead)
	due := make([]models.Task, 0)
	for _, task := range tasks {
		if task.ScheduledTime == nil {
			continue
		}
		at := task.ScheduledTime.On(now)
		if at.After(now) && !at.After(horizon) {
			due = append(due, task)
		}
	}
	return due
}

// FirstDue picks the task shown in the single "upcoming" banner: the first
// due task in list order.
func FirstDue(due []models.Task) (models.Task, bool) {
	if len(due) == 0 {
		return models.Task{}, false
	}
	return due[0], true
}
