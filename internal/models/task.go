package models

import "time"

// TaskKind distinguishes the two task screens of the household app
type TaskKind string

const (
	TaskKindChecklist TaskKind = "checklist"
	TaskKindTodo      TaskKind = "todo"
)

// Task is a checklist or to-do, optionally scheduled at a time of day
type Task struct {
	ID            string     `gorm:"primary_key" json:"id"`
	Kind          TaskKind   `gorm:"type:varchar(16)" json:"kind"`
	Title         string     `json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	ScheduledTime *TimeOfDay `gorm:"type:varchar(5)" json:"time,omitempty"`
	Items         []TaskItem `gorm:"foreignkey:TaskID" json:"items"`
	Position      int        `json:"-"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

// TableName sets the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TaskItem references a registry item by id, carrying its display name
type TaskItem struct {
	ID       uint   `gorm:"primary_key" json:"-"`
	TaskID   string `gorm:"index" json:"-"`
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Position int    `json:"-"`
}

// TableName sets the table name for TaskItem
func (TaskItem) TableName() string {
	return "task_items"
}

// Clone returns a deep copy so callers can hand out snapshots
func (t Task) Clone() Task {
	c := t
	if t.ScheduledTime != nil {
		st := *t.ScheduledTime
		c.ScheduledTime = &st
	}
	c.Items = append([]TaskItem(nil), t.Items...)
	return c
}

// ItemNames lists the display names of the task's items in order
func (t Task) ItemNames() []string {
	names := make([]string, len(t.Items))
	for i, it := range t.Items {
		names[i] = it.Name
	}
	return names
}
