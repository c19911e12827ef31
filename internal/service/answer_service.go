package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/lshigami/Kestrel/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerService is the answer ledger: one row per (attempt, question),
// writable by the owning student only while the attempt is IN_PROGRESS.
type AnswerService interface {
	Upsert(userID uint, req dto.AnswerUpsertRequest) (*dto.AnswerResponse, error)
	Update(answerID, userID uint, req dto.AnswerUpdateRequest) (*dto.AnswerResponse, error)
	ListByAttempt(attemptID, actorID uint, role model.Role) ([]dto.AnswerResponse, error)
}

type answerService struct {
	answerRepo   repository.AnswerRepository
	attemptRepo  repository.AttemptRepository
	questionRepo repository.QuestionRepository
	examRepo     repository.ExamRepository
}

func NewAnswerService(
	answerRepo repository.AnswerRepository,
	attemptRepo repository.AttemptRepository,
	questionRepo repository.QuestionRepository,
	examRepo repository.ExamRepository,
) AnswerService {
	return &answerService{
		answerRepo:   answerRepo,
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		examRepo:     examRepo,
	}
}

func (s *answerService) Upsert(userID uint, req dto.AnswerUpsertRequest) (*dto.AnswerResponse, error) {
	// A row with neither side of the content would still count the question as
	// attempted at scoring time, so content is mandatory on create.
	if req.SelectedOption == nil && req.AnswerText == nil {
		return nil, fmt.Errorf("either selected_option or answer_text is required: %w", ErrBadRequest)
	}

	attempt, err := s.writableAttempt(req.AttemptID, userID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %d: %w", req.QuestionID, ErrNotFound)
		}
		return nil, err
	}
	if question.ExamID != attempt.ExamID {
		return nil, fmt.Errorf("question %d does not belong to exam %d: %w", question.ID, attempt.ExamID, ErrBadRequest)
	}

	exam, err := s.examRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.FindByAttemptAndQuestion(attempt.ID, question.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		answer = &model.Answer{AttemptID: attempt.ID, QuestionID: question.ID}
	}

	applyAnswerPayload(answer, exam, question, req.SelectedOption, req.AnswerText)
	answer.TimeSpent += req.TimeSpent

	if answer.ID == 0 {
		err = s.answerRepo.Create(answer)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent upsert for the same
			// (attempt, question); fold into the surviving row.
			existing, findErr := s.answerRepo.FindByAttemptAndQuestion(attempt.ID, question.ID)
			if findErr != nil {
				return nil, findErr
			}
			applyAnswerPayload(existing, exam, question, req.SelectedOption, req.AnswerText)
			existing.TimeSpent += req.TimeSpent
			answer = existing
			err = s.answerRepo.Save(answer)
		}
	} else {
		err = s.answerRepo.Save(answer)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Uint("attemptID", attempt.ID).Uint("questionID", question.ID).Uint("answerID", answer.ID).Msg("Answer upserted")
	answer.Question = *question
	return toAnswerResponse(answer)
}

func (s *answerService) Update(answerID, userID uint, req dto.AnswerUpdateRequest) (*dto.AnswerResponse, error) {
	answer, err := s.answerRepo.FindByIDWithQuestion(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %d: %w", answerID, ErrNotFound)
		}
		return nil, err
	}

	attempt, err := s.writableAttempt(answer.AttemptID, userID)
	if err != nil {
		return nil, err
	}

	exam, err := s.examRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	applyAnswerPayload(answer, exam, &answer.Question, req.SelectedOption, req.AnswerText)
	answer.TimeSpent += req.TimeSpent

	if err := s.answerRepo.Save(answer); err != nil {
		return nil, err
	}
	return toAnswerResponse(answer)
}

func (s *answerService) ListByAttempt(attemptID, actorID uint, role model.Role) ([]dto.AnswerResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}
	if role == model.RoleStudent && attempt.UserID != actorID {
		return nil, fmt.Errorf("attempt %d belongs to another user: %w", attemptID, ErrForbidden)
	}

	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AnswerResponse, len(answers))
	for i := range answers {
		item, err := toAnswerResponse(&answers[i])
		if err != nil {
			return nil, err
		}
		resp[i] = *item
	}
	return resp, nil
}

// writableAttempt loads the attempt and enforces ownership plus the lock
// rule: answers may only be written while the attempt is IN_PROGRESS.
func (s *answerService) writableAttempt(attemptID, userID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt %d belongs to another user: %w", attemptID, ErrForbidden)
	}
	if !attempt.Status.Writable() {
		return nil, fmt.Errorf("attempt %d is %s: %w", attemptID, attempt.Status, ErrLocked)
	}
	return attempt, nil
}

// applyAnswerPayload switches the answer between objective and descriptive
// content exclusively: setting one side clears the other. For MCQ questions
// on negative-marking exams it also computes marks opportunistically at write
// time; the submit-time scoring pass later overwrites this with the same
// shared function, so the two can never disagree.
func applyAnswerPayload(answer *model.Answer, exam *model.Exam, question *model.Question, selectedOption, answerText *string) {
	if selectedOption != nil {
		answer.SelectedOption = selectedOption
		answer.AnswerText = nil
		if question.Type == model.QuestionMCQ && exam.NegativeMarking {
			marks, _ := scoring.ObjectiveMarks(exam, question, *selectedOption)
			answer.Marks = &marks
		}
	}
	if answerText != nil {
		answer.AnswerText = answerText
		answer.SelectedOption = nil
		answer.Marks = nil
	}
}

func toAnswerResponse(answer *model.Answer) (*dto.AnswerResponse, error) {
	var resp dto.AnswerResponse
	if err := copier.Copy(&resp, answer); err != nil {
		return nil, fmt.Errorf("error preparing answer response: %w", err)
	}
	if answer.Question.ID != 0 {
		if err := copier.Copy(&resp.Question, &answer.Question); err != nil {
			return nil, fmt.Errorf("error preparing question response: %w", err)
		}
	}
	return &resp, nil
}
