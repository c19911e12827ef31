package repository

import (
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	Save(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithDetails(id uint) (*model.Attempt, error)
	FindInProgress(userID, examID uint) (*model.Attempt, error)
	FindByStatusWithExam(status model.AttemptStatus) ([]model.Attempt, error)
	List(filter dto.AttemptListFilter) ([]model.Attempt, int64, error)
	Delete(id uint) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) Save(attempt *model.Attempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.First(&attempt, id).Error
	return &attempt, err
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Exam").
		Preload("Answers.Question").
		First(&attempt, id).Error
	return &attempt, err
}

func (r *attemptRepository) FindInProgress(userID, examID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, model.StatusInProgress).
		First(&attempt).Error
	return &attempt, err
}

func (r *attemptRepository) FindByStatusWithExam(status model.AttemptStatus) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Preload("Exam").Where("status = ?", status).Find(&attempts).Error
	return attempts, err
}

// sortableColumns whitelists what GET /attempts may order by; anything else
// falls back to created_at.
var sortableColumns = map[string]string{
	"created_at":  "attempts.created_at",
	"start_time":  "attempts.start_time",
	"submit_time": "attempts.submit_time",
	"score":       "attempts.score",
	"percentage":  "attempts.percentage",
	"accuracy":    "attempts.accuracy",
}

func (r *attemptRepository) List(filter dto.AttemptListFilter) ([]model.Attempt, int64, error) {
	query := r.db.Model(&model.Attempt{}).Joins("Exam")

	if filter.UserID != nil {
		query = query.Where("attempts.user_id = ?", *filter.UserID)
	}
	if filter.ExamID != nil {
		query = query.Where("attempts.exam_id = ?", *filter.ExamID)
	}
	if filter.Status != nil {
		query = query.Where("attempts.status = ?", *filter.Status)
	}
	if filter.EvaluationStatus != nil {
		query = query.Where("attempts.evaluation_status = ?", *filter.EvaluationStatus)
	}
	if filter.EvaluatedBy != nil {
		query = query.Where("attempts.evaluated_by = ?", *filter.EvaluatedBy)
	}
	if filter.Search != "" {
		// The Joins("Exam") alias is quoted in the generated SQL; the predicate
		// must quote it too or postgres case-folds the identifier away.
		query = query.Where(`"Exam".title LIKE ?`, "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		column = "attempts.created_at"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var attempts []model.Attempt
	err := query.
		Order(column + " " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *attemptRepository) Delete(id uint) error {
	// Answers go with their attempt; nothing else references them.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Attempt{}, id).Error
	})
}
