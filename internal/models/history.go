package models

import "time"

// HistoryEntry records one item status transition
type HistoryEntry struct {
	ID        string     `gorm:"primary_key" json:"id"`
	Seq       uint64     `gorm:"index" json:"-"`
	Timestamp time.Time  `gorm:"column:recorded_at;index" json:"date"`
	ItemID    string     `json:"itemId,omitempty"`
	ItemName  string     `json:"item"`
	User      string     `gorm:"column:user_name;index" json:"user"`
	Location  string     `json:"location"`
	Status    ItemStatus `gorm:"type:varchar(16)" json:"status"`
}

// TableName sets the table name for HistoryEntry
func (HistoryEntry) TableName() string {
	return "history"
}

// HistoryFilter narrows history queries. Zero fields match everything.
type HistoryFilter struct {
	User string
	From *time.Time
	To   *time.Time
}

// Matches applies the filter to a single entry
func (f HistoryFilter) Matches(e HistoryEntry) bool {
	if f.User != "" && f.User != "all" && e.User != f.User {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}
