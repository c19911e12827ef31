package model

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseItemType says what a purchase covers: a single exam or a whole
// test series.
type PurchaseItemType string

const (
	PurchaseExam       PurchaseItemType = "exam"
	PurchaseTestSeries PurchaseItemType = "test_series"
)

const PurchaseCompleted = "completed"

// Purchase is a read-only projection of the payment ledger. Entitlement is
// derived from it on every access check, never cached on the attempt.
type Purchase struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    uint             `json:"user_id" gorm:"not null;index"`
	ItemType  PurchaseItemType `json:"item_type" gorm:"type:varchar(16);not null"`
	ItemID    uint             `json:"item_id" gorm:"not null;index"`
	Status    string           `json:"status" gorm:"type:varchar(16);not null"`
	ValidTill time.Time        `json:"valid_till" gorm:"not null"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}
