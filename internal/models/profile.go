package models

import "time"

// Profile represents a family member and the routine they follow
type Profile struct {
	ID         string      `gorm:"primary_key" json:"id"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	Avatar     string      `json:"avatar,omitempty"`
	Routine    string      `gorm:"type:text" json:"routine"`
	Essentials StringSlice `gorm:"type:text" json:"essentials"`
	Position   int         `json:"-"`
	CreatedAt  time.Time   `json:"-"`
	UpdatedAt  time.Time   `json:"-"`
}

// TableName sets the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
