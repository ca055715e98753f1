package models

import "time"

type ConsultationMode string

const (
	ModeOnline   ConsultationMode = "online"
	ModeInPerson ConsultationMode = "in_person"
	ModeBoth     ConsultationMode = "both"
)

// AvailabilityWindow is either recurring (DayOfWeek set) or exceptional
// (ExceptionalDate set, IsExceptional true). Times are "HH:mm".
type AvailabilityWindow struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	VeterinarianID uint `gorm:"index:idx_window_vet_day;not null" json:"veterinarian_id"`
	Veterinarian   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	DayOfWeek       *string    `gorm:"size:10;index:idx_window_vet_day" json:"day_of_week,omitempty"`
	ExceptionalDate *time.Time `gorm:"type:date;index" json:"exceptional_date,omitempty"`

	StartTime string           `gorm:"size:5;not null" json:"start_time"`
	EndTime   string           `gorm:"size:5;not null" json:"end_time"`
	Mode      ConsultationMode `gorm:"size:10;not null;default:'both'" json:"mode"`

	IsAvailable   bool `gorm:"not null" json:"is_available"`
	IsExceptional bool `gorm:"not null;default:false" json:"is_exceptional"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
