package model

import "time"

const DefaultCategory = "Notes"

type Resource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `gorm:"size:128;not null;index" json:"subject"`
	Year        string    `gorm:"size:8;not null;index" json:"year"`
	Branch      string    `gorm:"size:32;not null;index" json:"branch"`
	Semester    string    `gorm:"size:32;not null" json:"semester"`
	Category    string    `gorm:"size:32;not null;default:Notes;index" json:"category"`
	FileURL     string    `gorm:"size:1024;not null" json:"file_url"`
	ObjectKey   string    `gorm:"size:512" json:"-"`
	FileType    string    `gorm:"size:16" json:"file_type"`
	UploadedBy  uint      `gorm:"index" json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// ResourceFilter narrows a catalogue listing. Empty fields do not filter.
type ResourceFilter struct {
	Branch   string
	Year     string
	Category string
	Subject  string
}
