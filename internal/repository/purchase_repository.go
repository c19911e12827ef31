package repository

import (
	"time"

	"github.com/lshigami/Kestrel/internal/model"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	// HasValidPurchase reports whether a completed, unexpired purchase exists
	// for the given item.
	HasValidPurchase(userID uint, itemType model.PurchaseItemType, itemID uint, at time.Time) (bool, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) HasValidPurchase(userID uint, itemType model.PurchaseItemType, itemID uint, at time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.Purchase{}).
		Where("user_id = ? AND item_type = ? AND item_id = ? AND status = ? AND valid_till >= ?",
			userID, itemType, itemID, model.PurchaseCompleted, at).
		Count(&count).Error
	return count > 0, err
}
