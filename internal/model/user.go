package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a read-only projection of the identity service's user record. The
// scoring core only needs it to resolve roles (e.g. validating that an
// assigned evaluator actually is a teacher).
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Role      Role           `json:"role" gorm:"type:varchar(16);not null;default:'student'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
