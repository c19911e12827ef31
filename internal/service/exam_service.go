package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamService exposes the content catalog read-only. Authoring lives in a
// different system; this core only consumes exam and question definitions.
type ExamService interface {
	GetAllExams() ([]dto.ExamSummaryResponse, error)
	GetExamDetails(examID uint) (*dto.ExamResponse, error)
}

type examService struct {
	examRepo repository.ExamRepository
}

func NewExamService(examRepo repository.ExamRepository) ExamService {
	return &examService{examRepo: examRepo}
}

func (s *examService) GetAllExams() ([]dto.ExamSummaryResponse, error) {
	examsWithCount, err := s.examRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams with question count")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	var dtos []dto.ExamSummaryResponse
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryResponse{
			ID:            ewc.Exam.ID,
			Title:         ewc.Exam.Title,
			TotalMarks:    ewc.Exam.TotalMarks,
			Duration:      ewc.Exam.Duration,
			IsFree:        ewc.Exam.IsFree,
			QuestionCount: ewc.QuestionCount,
			CreatedAt:     ewc.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *examService) GetExamDetails(examID uint) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("exam %d: %w", examID, ErrNotFound)
		}
		return nil, err
	}

	var resp dto.ExamResponse
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to ExamResponse")
		return nil, fmt.Errorf("error preparing exam details response: %w", err)
	}
	return &resp, nil
}
