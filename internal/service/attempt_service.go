package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/lshigami/Kestrel/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// startGracePeriod pushes an attempt's start time slightly into the future so
// client/server clock skew cannot eat into the student's exam timer.
const startGracePeriod = 2 * time.Minute

// AttemptService owns the attempt lifecycle: creation, submission with
// synchronous auto-scoring, evaluator updates, deletion and evaluator
// assignment.
type AttemptService interface {
	Create(userID uint, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error)
	Get(attemptID, actorID uint, role model.Role) (*dto.AttemptResponse, error)
	List(filter dto.AttemptListFilter, actorID uint, role model.Role) (*dto.AttemptListResponse, error)
	StudentUpdate(attemptID, userID uint, req dto.AttemptUpdateRequest) (*dto.AttemptResponse, error)
	EvaluatorUpdate(attemptID, actorID uint, role model.Role, req dto.AttemptUpdateRequest) (*dto.AttemptResponse, error)
	Remove(attemptID, actorID uint, isAdmin bool) error
	Assign(attemptID, evaluatorID uint) (*dto.AttemptResponse, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	examRepo    repository.ExamRepository
	userRepo    repository.UserRepository
	entitlement EntitlementService
	notifier    Notifier
	policy      scoring.CorrectnessPolicy
	db          *gorm.DB // transactions spanning attempt + answer writes
}

func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	examRepo repository.ExamRepository,
	userRepo repository.UserRepository,
	entitlement EntitlementService,
	notifier Notifier,
	db *gorm.DB,
) AttemptService {
	return &attemptService{
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		examRepo:    examRepo,
		userRepo:    userRepo,
		entitlement: entitlement,
		notifier:    notifier,
		policy:      scoring.MidpointPolicy,
		db:          db,
	}
}

func (s *attemptService) Create(userID uint, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error) {
	exam, err := s.examRepo.FindByID(req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("exam %d: %w", req.ExamID, ErrNotFound)
		}
		return nil, err
	}
	if !exam.IsActive {
		return nil, fmt.Errorf("exam %d is not active: %w", exam.ID, ErrBadRequest)
	}

	allowed, err := s.entitlement.HasAccess(userID, exam.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("user %d has no access to exam %d: %w", userID, exam.ID, ErrForbidden)
	}

	if _, err := s.attemptRepo.FindInProgress(userID, exam.ID); err == nil {
		return nil, fmt.Errorf("an attempt for exam %d is already in progress: %w", exam.ID, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := model.Attempt{
		UserID:    userID,
		ExamID:    exam.ID,
		Status:    model.StatusInProgress,
		StartTime: time.Now().Add(startGracePeriod),
		MaxScore:  exam.TotalMarks, // immutable snapshot; later exam edits don't touch it
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		// The partial unique index is the authority; the pre-check above only
		// closes the common case, not the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("an attempt for exam %d is already in progress: %w", exam.ID, ErrConflict)
		}
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("userID", userID).Uint("examID", exam.ID).Msg("Attempt created")
	attempt.Exam = *exam
	return s.toResponse(&attempt)
}

func (s *attemptService) Get(attemptID, actorID uint, role model.Role) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}
	if role == model.RoleStudent && attempt.UserID != actorID {
		return nil, fmt.Errorf("attempt %d belongs to another user: %w", attemptID, ErrForbidden)
	}
	return s.toResponse(attempt)
}

func (s *attemptService) List(filter dto.AttemptListFilter, actorID uint, role model.Role) (*dto.AttemptListResponse, error) {
	// Students only ever see their own attempts, whatever the query says.
	if role == model.RoleStudent {
		filter.UserID = &actorID
	}

	attempts, total, err := s.attemptRepo.List(filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		item, err := s.toResponse(&attempts[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return &dto.AttemptListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *attemptService) StudentUpdate(attemptID, userID uint, req dto.AttemptUpdateRequest) (*dto.AttemptResponse, error) {
	if req.Score != nil || req.EvaluationStatus != nil || req.Feedback != nil ||
		req.CorrectAnswers != nil || req.IncorrectAnswers != nil || req.Unattempted != nil ||
		req.Accuracy != nil || req.Rank != nil || req.AnswerSheetURL != nil {
		return nil, fmt.Errorf("students may only update status and time spent: %w", ErrForbidden)
	}

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

	if req.TimeSpent != nil {
		// Time accumulation is a student mutation and obeys the same lock as
		// the answer sheet: nothing accrues once the attempt left IN_PROGRESS.
		if !attempt.Status.Writable() {
			return nil, fmt.Errorf("attempt %d is %s: %w", attempt.ID, attempt.Status, ErrLocked)
		}
		attempt.TimeSpent += *req.TimeSpent
	}

	if req.Status == nil {
		if err := s.attemptRepo.Save(attempt); err != nil {
			return nil, err
		}
		return s.toResponse(attempt)
	}

	to := model.AttemptStatus(*req.Status)
	if !model.CanTransition(attempt.Status, to, model.RoleStudent) {
		return nil, fmt.Errorf("cannot move attempt %d from %s to %s: %w", attempt.ID, attempt.Status, to, ErrConflict)
	}

	switch to {
	case model.StatusSubmitted:
		return s.submit(attempt)
	case model.StatusCompleted:
		now := time.Now()
		attempt.Status = model.StatusCompleted
		attempt.EndTime = &now
		if err := s.attemptRepo.Save(attempt); err != nil {
			return nil, err
		}
		s.notifier.AttemptEvent(EventAttemptCompleted, attempt)
		return s.toResponse(attempt)
	}
	return nil, fmt.Errorf("unsupported status %s: %w", to, ErrBadRequest)
}

// submit scores the attempt and commits the SUBMITTED transition. A scoring
// failure is logged and swallowed: the transition still succeeds with score
// fields left unset, so a computation bug never blocks a student's
// submission.
func (s *attemptService) submit(attempt *model.Attempt) (*dto.AttemptResponse, error) {
	now := time.Now()
	attempt.Status = model.StatusSubmitted
	attempt.SubmitTime = &now

	exam, answers, result, scoreErr := s.scoreAttempt(attempt)
	if scoreErr != nil {
		log.Error().Err(scoreErr).Uint("attemptID", attempt.ID).Msg("Scoring failed, submitting without score")
	} else {
		score := result.Score
		attempt.Score = &score
		if attempt.MaxScore > 0 {
			pct := score / attempt.MaxScore * 100
			attempt.Percentage = &pct
		}
		attempt.CorrectAnswers = result.CorrectAnswers
		attempt.IncorrectAnswers = result.IncorrectAnswers
		attempt.Unattempted = result.Unattempted
		attempt.Accuracy = result.Accuracy
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		if scoreErr != nil {
			return nil
		}
		// The submit-time pass is the source of truth: it overwrites any
		// marks computed opportunistically at answer-write time.
		for i := range answers {
			q := answers[i].Question
			if q.Type != model.QuestionMCQ || answers[i].SelectedOption == nil {
				continue
			}
			marks, _ := scoring.ObjectiveMarks(exam, &q, *answers[i].SelectedOption)
			if err := tx.Model(&model.Answer{}).Where("id = ?", answers[i].ID).Update("marks", marks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Interface("score", attempt.Score).Msg("Attempt submitted")
	s.notifier.AttemptEvent(EventAttemptSubmitted, attempt)

	detailed, err := s.attemptRepo.FindByIDWithDetails(attempt.ID)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to reload attempt after submit, returning in-memory state")
		return s.toResponse(attempt)
	}
	return s.toResponse(detailed)
}

// scoreAttempt loads everything scoring needs and runs the engine. Any
// failure on this path, a load error or a panic in the engine, comes back as
// an error so submit can degrade to a scoreless submission instead of
// blocking the student.
func (s *attemptService) scoreAttempt(attempt *model.Attempt) (exam *model.Exam, answers []model.Answer, result scoring.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()
	exam, err = s.examRepo.FindByIDWithQuestions(attempt.ExamID)
	if err != nil {
		return
	}
	answers, err = s.answerRepo.FindByAttemptID(attempt.ID)
	if err != nil {
		return
	}
	result = scoring.Score(exam, exam.Questions, answers, s.policy)
	return
}

func (s *attemptService) EvaluatorUpdate(attemptID, actorID uint, role model.Role, req dto.AttemptUpdateRequest) (*dto.AttemptResponse, error) {
	if role != model.RoleTeacher && role != model.RoleAdmin {
		return nil, fmt.Errorf("evaluator updates require the teacher or admin role: %w", ErrForbidden)
	}

	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}

	if req.Status != nil {
		to := model.AttemptStatus(*req.Status)
		if !model.CanTransition(attempt.Status, to, role) {
			return nil, fmt.Errorf("cannot move attempt %d from %s to %s: %w", attempt.ID, attempt.Status, to, ErrConflict)
		}
		attempt.Status = to
		if to == model.StatusEvaluated {
			attempt.EvaluatedBy = &actorID
			now := time.Now()
			attempt.EndTime = &now
		}
	}

	if req.Score != nil {
		attempt.Score = req.Score
		if attempt.MaxScore > 0 {
			pct := *req.Score / attempt.MaxScore * 100
			attempt.Percentage = &pct
		}
	}
	if req.EvaluationStatus != nil {
		attempt.EvaluationStatus = req.EvaluationStatus
	}
	if req.Feedback != nil {
		attempt.Feedback = req.Feedback
	}
	if req.CorrectAnswers != nil {
		attempt.CorrectAnswers = *req.CorrectAnswers
	}
	if req.IncorrectAnswers != nil {
		attempt.IncorrectAnswers = *req.IncorrectAnswers
	}
	if req.Unattempted != nil {
		attempt.Unattempted = *req.Unattempted
	}
	if req.Accuracy != nil {
		attempt.Accuracy = *req.Accuracy
	}
	if req.Rank != nil {
		attempt.Rank = req.Rank
	}
	if req.AnswerSheetURL != nil {
		attempt.AnswerSheetURL = req.AnswerSheetURL
	}

	if err := s.attemptRepo.Save(attempt); err != nil {
		return nil, err
	}

	if req.Status != nil && attempt.Status == model.StatusEvaluated {
		s.notifier.AttemptEvent(EventAttemptEvaluated, attempt)
	}
	return s.toResponse(attempt)
}

func (s *attemptService) Remove(attemptID, actorID uint, isAdmin bool) error {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return err
	}
	if !isAdmin && attempt.UserID != actorID {
		return fmt.Errorf("attempt %d belongs to another user: %w", attemptID, ErrForbidden)
	}
	// Deletion is unconditional for owner/admin, no state gating.
	return s.attemptRepo.Delete(attemptID)
}

func (s *attemptService) Assign(attemptID, evaluatorID uint) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		return nil, err
	}

	evaluator, err := s.userRepo.FindByID(evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluator %d: %w", evaluatorID, ErrNotFound)
		}
		return nil, err
	}
	if evaluator.Role != model.RoleTeacher {
		return nil, fmt.Errorf("user %d does not have the teacher role: %w", evaluatorID, ErrBadRequest)
	}

	status := model.EvaluationAssigned
	attempt.EvaluatedBy = &evaluatorID
	attempt.EvaluationStatus = &status
	// Assignment routes grading work; the attempt status itself is untouched.
	if err := s.attemptRepo.Save(attempt); err != nil {
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("evaluatorID", evaluatorID).Msg("Attempt assigned to evaluator")
	return s.toResponse(attempt)
}

func (s *attemptService) toResponse(attempt *model.Attempt) (*dto.AttemptResponse, error) {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, fmt.Errorf("error preparing attempt response: %w", err)
	}
	if attempt.Exam.ID != 0 {
		resp.ExamTitle = attempt.Exam.Title
	}
	if len(attempt.Answers) > 0 {
		resp.Answers = make([]dto.AnswerResponse, len(attempt.Answers))
		for i := range attempt.Answers {
			if err := copier.Copy(&resp.Answers[i], &attempt.Answers[i]); err != nil {
				return nil, fmt.Errorf("error preparing answer response: %w", err)
			}
			if attempt.Answers[i].Question.ID != 0 {
				if err := copier.Copy(&resp.Answers[i].Question, &attempt.Answers[i].Question); err != nil {
					return nil, fmt.Errorf("error preparing question response: %w", err)
				}
			}
		}
	}
	return &resp, nil
}
