package models

import "time"

type AppointmentKind string

const (
	KindOnline   AppointmentKind = "online"
	KindInPerson AppointmentKind = "in_person"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date            time.Time `gorm:"type:date;index:idx_appointment_vet_date;not null" json:"date"`
	Time            string    `gorm:"size:5;not null" json:"time"`
	DurationMinutes int       `gorm:"not null;default:30" json:"duration_minutes"`

	VeterinarianID uint `gorm:"index:idx_appointment_vet_date;not null" json:"veterinarian_id"`
	Veterinarian   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	OwnerID uint `gorm:"index;not null" json:"owner_id"`
	Owner   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Reason string          `gorm:"size:255" json:"reason"`
	Kind   AppointmentKind `gorm:"size:10;not null" json:"kind"`
	Status string          `gorm:"size:20;index;default:'pending'" json:"status"`
	Notes  string          `gorm:"type:text" json:"notes"`

	// Weak reference: the payment row owns the edge back to its appointment.
	LastSuccessfulPaymentID *uint `json:"last_successful_payment_id"`

	AnimalLinks   []AppointmentAnimal `gorm:"foreignKey:AppointmentID" json:"animals,omitempty"`
	Consultations []Consultation      `gorm:"foreignKey:AppointmentID" json:"consultations,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CanceledAt  *time.Time `json:"canceled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentAnimal struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"uniqueIndex:idx_appointment_animal;not null" json:"appointment_id"`
	AnimalID      uint   `gorm:"uniqueIndex:idx_appointment_animal;not null" json:"animal_id"`
	Animal        Animal `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"animal"`

	CreatedAt time.Time `json:"created_at"`
}
