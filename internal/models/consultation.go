package models

import "time"

// Consultation rows are written by the consultation service.
type Consultation struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"index;not null" json:"appointment_id"`
	AnimalID      uint   `gorm:"index;not null" json:"animal_id"`
	Notes         string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
