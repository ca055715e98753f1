package models

import "time"

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is owned by the payment processor integration.
type Payment struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AppointmentID uint          `gorm:"index;not null" json:"appointment_id"`
	Provider      string        `gorm:"size:30" json:"provider"`
	ProviderRef   string        `gorm:"size:100;index" json:"provider_ref"`
	Status        PaymentStatus `gorm:"size:20" json:"status"`
	AmountCents   int64         `json:"amount_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
