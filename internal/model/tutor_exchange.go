package model

import "time"

// TutorExchange is one answered chat turn, kept as an audit trail.
type TutorExchange struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:256" json:"title"`
	Subject   string    `gorm:"size:128;index" json:"subject"`
	Branch    string    `gorm:"size:32" json:"branch"`
	FileURL   string    `gorm:"size:1024" json:"file_url"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Reply     string    `gorm:"type:text;not null" json:"reply"`
	Model     string    `gorm:"size:64" json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
