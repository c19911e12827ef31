package service

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lshigami/Kestrel/database"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixture wires the full service stack against a throwaway sqlite database.
// The schema comes from the same Migrate the real server runs, so the partial
// unique index on attempts is enforced in tests too.
type fixture struct {
	db          *gorm.DB
	attempts    AttemptService
	answers     AnswerService
	evaluations EvaluationService
	entitlement EntitlementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kestrel_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	examRepo := repository.NewExamRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	userRepo := repository.NewUserRepository(db)

	entitlement := NewEntitlementService(examRepo, purchaseRepo)
	notifier := NewNoopNotifier()
	attempts := NewAttemptService(attemptRepo, answerRepo, examRepo, userRepo, entitlement, notifier, db)

	return &fixture{
		db:          db,
		attempts:    attempts,
		answers:     NewAnswerService(answerRepo, attemptRepo, questionRepo, examRepo),
		evaluations: NewEvaluationService(answerRepo, attemptRepo, examRepo, attempts, notifier, db),
		entitlement: entitlement,
	}
}

var userSeq uint64

func (f *fixture) createUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:  "Test " + string(role),
		Email: fmt.Sprintf("%s-%d@example.com", role, atomic.AddUint64(&userSeq, 1)),
		Role:  role,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) createExam(t *testing.T, exam *model.Exam) *model.Exam {
	t.Helper()
	if exam.Title == "" {
		exam.Title = "Mock Test"
	}
	require.NoError(t, f.db.Create(exam).Error)
	return exam
}

// createMCQExam seeds an active free exam with n objective questions, each
// worth marksEach and with correct option "A".
func (f *fixture) createMCQExam(t *testing.T, teacherID uint, n int, marksEach float64, negative bool, incorrectMark float64) *model.Exam {
	t.Helper()
	exam := f.createExam(t, &model.Exam{
		Title:           "Objective Mock",
		TeacherID:       teacherID,
		TotalMarks:      float64(n) * marksEach,
		NegativeMarking: negative,
		CorrectMark:     marksEach,
		IncorrectMark:   incorrectMark,
		Duration:        60,
		IsFree:          true,
		IsActive:        true,
	})
	for i := 1; i <= n; i++ {
		q := &model.Question{
			ExamID:        exam.ID,
			Text:          "Pick A",
			Type:          model.QuestionMCQ,
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: "A",
			Marks:         marksEach,
			OrderInExam:   i,
		}
		require.NoError(t, f.db.Create(q).Error)
		exam.Questions = append(exam.Questions, *q)
	}
	return exam
}

// createDescriptiveExam seeds an active free exam with n essay questions,
// each worth marksEach.
func (f *fixture) createDescriptiveExam(t *testing.T, teacherID uint, n int, marksEach float64) *model.Exam {
	t.Helper()
	exam := f.createExam(t, &model.Exam{
		Title:      "Essay Mock",
		TeacherID:  teacherID,
		TotalMarks: float64(n) * marksEach,
		Duration:   90,
		IsFree:     true,
		IsActive:   true,
	})
	for i := 1; i <= n; i++ {
		q := &model.Question{
			ExamID:      exam.ID,
			Text:        "Write an essay",
			Type:        model.QuestionDescriptive,
			Marks:       marksEach,
			OrderInExam: i,
		}
		require.NoError(t, f.db.Create(q).Error)
		exam.Questions = append(exam.Questions, *q)
	}
	return exam
}

func (f *fixture) createAttempt(t *testing.T, userID uint, exam *model.Exam, status model.AttemptStatus) *model.Attempt {
	t.Helper()
	attempt := &model.Attempt{
		UserID:    userID,
		ExamID:    exam.ID,
		Status:    status,
		StartTime: time.Now(),
		MaxScore:  exam.TotalMarks,
	}
	require.NoError(t, f.db.Create(attempt).Error)
	return attempt
}

func (f *fixture) createAnswer(t *testing.T, answer *model.Answer) *model.Answer {
	t.Helper()
	require.NoError(t, f.db.Create(answer).Error)
	return answer
}

func (f *fixture) reloadAttempt(t *testing.T, id uint) *model.Attempt {
	t.Helper()
	var attempt model.Attempt
	require.NoError(t, f.db.First(&attempt, id).Error)
	return &attempt
}

func (f *fixture) reloadAnswer(t *testing.T, id uint) *model.Answer {
	t.Helper()
	var answer model.Answer
	require.NoError(t, f.db.First(&answer, id).Error)
	return &answer
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func f64Ptr(f float64) *float64 { return &f }
