package service

import (
	"testing"
	"time"

	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitorSweepClosesOverdueAttempts(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0) // 60 minute duration

	overdue := &model.Attempt{
		UserID:    student.ID,
		ExamID:    exam.ID,
		Status:    model.StatusInProgress,
		StartTime: time.Now().Add(-2 * time.Hour),
		MaxScore:  exam.TotalMarks,
	}
	require.NoError(t, f.db.Create(overdue).Error)

	janitor := NewJanitor(repository.NewAttemptRepository(f.db), NewNoopNotifier())
	janitor.Sweep()

	reloaded := f.reloadAttempt(t, overdue.ID)
	assert.Equal(t, model.StatusCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.EndTime)
}

func TestJanitorSweepLeavesRunningAttempts(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)

	fresh := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	janitor := NewJanitor(repository.NewAttemptRepository(f.db), NewNoopNotifier())
	janitor.Sweep()

	assert.Equal(t, model.StatusInProgress, f.reloadAttempt(t, fresh.ID).Status)
}

func TestJanitorSweepIgnoresUntimedExams(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createExam(t, &model.Exam{
		Title: "Untimed Practice", TeacherID: teacher.ID, TotalMarks: 10, Duration: 0, IsFree: true, IsActive: true,
	})

	stale := &model.Attempt{
		UserID:    student.ID,
		ExamID:    exam.ID,
		Status:    model.StatusInProgress,
		StartTime: time.Now().Add(-48 * time.Hour),
		MaxScore:  exam.TotalMarks,
	}
	require.NoError(t, f.db.Create(stale).Error)

	janitor := NewJanitor(repository.NewAttemptRepository(f.db), NewNoopNotifier())
	janitor.Sweep()

	assert.Equal(t, model.StatusInProgress, f.reloadAttempt(t, stale.ID).Status)
}
