package models

import "time"

// ItemStatus is where an item stands relative to its recorded location
type ItemStatus string

const (
	StatusInPlace   ItemStatus = "In Place"
	StatusMisplaced ItemStatus = "Misplaced"
)

// IsItemStatusValid checks if a status is one of the two known values
func IsItemStatusValid(status ItemStatus) bool {
	switch status {
	case StatusInPlace, StatusMisplaced:
		return true
	default:
		return false
	}
}

// Item represents a tracked household belonging
type Item struct {
	ID        string     `gorm:"primary_key" json:"id"`
	Name      string     `gorm:"index" json:"name"`
	Owner     string     `json:"owner"`
	Location  string     `json:"location"`
	Status    ItemStatus `gorm:"type:varchar(16)" json:"status"`
	HasTag    bool       `json:"hasTag"`
	Position  int        `json:"-"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// TableName sets the table name for Item
func (Item) TableName() string {
	return "items"
}
