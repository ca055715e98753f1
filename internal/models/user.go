package models

import "time"

type Role string

const (
	RoleVeterinarian Role = "veterinarian"
	RoleOwner        Role = "owner"
	RoleAdmin        Role = "admin"
	RoleSystem       Role = "system"
)

// User rows are owned by the identity service; the scheduler only reads them.
type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`
	Role  Role   `gorm:"size:20;index;not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
