package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EntitlementService answers "may this user start an attempt on this exam".
// The answer is re-derived from the purchase ledger on every call, never
// cached on the attempt.
type EntitlementService interface {
	HasAccess(userID, examID uint) (bool, error)
}

type entitlementService struct {
	examRepo     repository.ExamRepository
	purchaseRepo repository.PurchaseRepository
}

func NewEntitlementService(examRepo repository.ExamRepository, purchaseRepo repository.PurchaseRepository) EntitlementService {
	return &entitlementService{examRepo: examRepo, purchaseRepo: purchaseRepo}
}

func (s *entitlementService) HasAccess(userID, examID uint) (bool, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("exam %d: %w", examID, ErrNotFound)
		}
		return false, err
	}

	if exam.IsFree {
		return true, nil
	}

	now := time.Now()
	ok, err := s.purchaseRepo.HasValidPurchase(userID, model.PurchaseExam, examID, now)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	if exam.TestSeriesID != nil {
		ok, err = s.purchaseRepo.HasValidPurchase(userID, model.PurchaseTestSeries, *exam.TestSeriesID, now)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	log.Debug().Uint("userID", userID).Uint("examID", examID).Msg("No valid purchase covering exam")
	return false, nil
}
