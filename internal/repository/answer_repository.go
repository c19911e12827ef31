package repository

import (
	"github.com/lshigami/Kestrel/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(answer *model.Answer) error
	Save(answer *model.Answer) error
	FindByID(id uint) (*model.Answer, error)
	FindByIDWithQuestion(id uint) (*model.Answer, error)
	FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error)
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(answer *model.Answer) error {
	return r.db.Create(answer).Error
}

func (r *answerRepository) Save(answer *model.Answer) error {
	return r.db.Save(answer).Error
}

func (r *answerRepository) FindByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.First(&answer, id).Error
	return &answer, err
}

func (r *answerRepository) FindByIDWithQuestion(id uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Preload("Question").First(&answer, id).Error
	return &answer, err
}

func (r *answerRepository) FindByAttemptAndQuestion(attemptID, questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error
	return &answer, err
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.
		Preload("Question").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.attempt_id = ?", attemptID).
		Order("questions.order_in_exam ASC").
		Find(&answers).Error
	return answers, err
}
