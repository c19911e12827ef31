package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EvaluationService is the manual grading workflow for descriptive answers.
// Unlike scoring at submit time, errors here are never swallowed: a grade
// must either land correctly or not at all.
type EvaluationService interface {
	EvaluateSingle(answerID, teacherID uint, role model.Role, req dto.AnswerEvaluateRequest) (*dto.AnswerResponse, error)
	BulkEvaluate(attemptID, teacherID uint, role model.Role, req dto.BulkEvaluateRequest) (*dto.AttemptResponse, error)
}

type evaluationService struct {
	answerRepo  repository.AnswerRepository
	attemptRepo repository.AttemptRepository
	examRepo    repository.ExamRepository
	attempts    AttemptService
	notifier    Notifier
	db          *gorm.DB
}

func NewEvaluationService(
	answerRepo repository.AnswerRepository,
	attemptRepo repository.AttemptRepository,
	examRepo repository.ExamRepository,
	attempts AttemptService,
	notifier Notifier,
	db *gorm.DB,
) EvaluationService {
	return &evaluationService{
		answerRepo:  answerRepo,
		attemptRepo: attemptRepo,
		examRepo:    examRepo,
		attempts:    attempts,
		notifier:    notifier,
		db:          db,
	}
}

func (s *evaluationService) EvaluateSingle(answerID, teacherID uint, role model.Role, req dto.AnswerEvaluateRequest) (*dto.AnswerResponse, error) {
	answer, err := s.answerRepo.FindByIDWithQuestion(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %d: %w", answerID, ErrNotFound)
		}
		return nil, err
	}

	attempt, err := s.attemptRepo.FindByID(answer.AttemptID)
	if err != nil {
		return nil, err
	}
	if err := s.checkExamOwnership(attempt.ExamID, teacherID, role); err != nil {
		return nil, err
	}
	if attempt.Status == model.StatusEvaluated {
		return nil, fmt.Errorf("attempt %d is already finalized: %w", attempt.ID, ErrLocked)
	}
	if req.Marks == nil || *req.Marks < 0 {
		return nil, fmt.Errorf("marks must be non-negative: %w", ErrBadRequest)
	}

	now := time.Now()
	answer.Marks = req.Marks
	if req.Feedback != "" {
		answer.Feedback = &req.Feedback
	}
	answer.EvaluatedBy = &teacherID
	answer.EvaluatedAt = &now

	// Single-answer grading does not touch the attempt aggregate; that is
	// deferred to bulk evaluation or an explicit evaluator attempt update.
	if err := s.answerRepo.Save(answer); err != nil {
		return nil, err
	}

	log.Info().Uint("answerID", answer.ID).Uint("teacherID", teacherID).Msg("Answer evaluated")
	return toAnswerResponse(answer)
}

func (s *evaluationService) BulkEvaluate(attemptID, teacherID uint, role model.Role, req dto.BulkEvaluateRequest) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}
	if err := s.checkExamOwnership(attempt.ExamID, teacherID, role); err != nil {
		return nil, err
	}
	if !model.CanTransition(attempt.Status, model.StatusEvaluated, role) {
		return nil, fmt.Errorf("cannot finalize attempt %d from status %s: %w", attempt.ID, attempt.Status, ErrConflict)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		total := 0.0
		for _, ev := range req.Evaluations {
			if ev.Marks < 0 {
				return fmt.Errorf("marks for question %d must be non-negative: %w", ev.QuestionID, ErrBadRequest)
			}

			var answer model.Answer
			findErr := tx.Where("attempt_id = ? AND question_id = ?", attemptID, ev.QuestionID).First(&answer).Error
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				// Evaluations for non-existent answers are ignored, not
				// errors: the student simply never answered that question.
				log.Warn().Uint("attemptID", attemptID).Uint("questionID", ev.QuestionID).Msg("BulkEvaluate: no answer for question, skipping")
				continue
			}
			if findErr != nil {
				return findErr
			}

			marks := ev.Marks
			answer.Marks = &marks
			if ev.Feedback != "" {
				feedback := ev.Feedback
				answer.Feedback = &feedback
			}
			answer.EvaluatedBy = &teacherID
			answer.EvaluatedAt = &now
			if saveErr := tx.Save(&answer).Error; saveErr != nil {
				return saveErr
			}
			total += marks
		}

		// The bulk pass is authoritative: the accumulated total overwrites
		// any previously computed score.
		attempt.Status = model.StatusEvaluated
		attempt.Score = &total
		if attempt.MaxScore > 0 {
			pct := total / attempt.MaxScore * 100
			attempt.Percentage = &pct
		}
		attempt.EvaluatedBy = &teacherID
		evalStatus := model.EvaluationCompleted
		attempt.EvaluationStatus = &evalStatus
		attempt.EndTime = &now
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("teacherID", teacherID).Float64("score", *attempt.Score).Msg("Attempt bulk-evaluated")
	s.notifier.AttemptEvent(EventAttemptEvaluated, attempt)

	return s.attempts.Get(attemptID, teacherID, role)
}

// checkExamOwnership enforces that only the exam's owning teacher (or an
// admin) may grade its answers.
func (s *evaluationService) checkExamOwnership(examID, teacherID uint, role model.Role) error {
	if role == model.RoleAdmin {
		return nil
	}
	if role != model.RoleTeacher {
		return fmt.Errorf("grading requires the teacher role: %w", ErrForbidden)
	}
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("exam %d: %w", examID, ErrNotFound)
		}
		return err
	}
	if exam.TeacherID != teacherID {
		return fmt.Errorf("teacher %d does not own exam %d: %w", teacherID, examID, ErrForbidden)
	}
	return nil
}
