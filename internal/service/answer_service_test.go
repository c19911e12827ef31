package service

import (
	"testing"

	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerUpsertCreatesThenConverges(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 2, 1, false, 0)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	first, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID:      attempt.ID,
		QuestionID:     exam.Questions[0].ID,
		SelectedOption: strPtr("B"),
		TimeSpent:      30,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", *first.SelectedOption)

	// Second upsert for the same question revises the same row.
	second, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID:      attempt.ID,
		QuestionID:     exam.Questions[0].ID,
		SelectedOption: strPtr("A"),
		TimeSpent:      30,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", *second.SelectedOption)
	assert.Equal(t, 60, second.TimeSpent)

	var count int64
	require.NoError(t, f.db.Model(&model.Answer{}).Where("attempt_id = ?", attempt.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAnswerUpsertComputesMarksOnNegativeMarkingExam(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 2, 2, true, -0.5)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	correct, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID: attempt.ID, QuestionID: exam.Questions[0].ID, SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)
	require.NotNil(t, correct.Marks)
	assert.InDelta(t, 2.0, *correct.Marks, 1e-9)

	wrong, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID: attempt.ID, QuestionID: exam.Questions[1].ID, SelectedOption: strPtr("C"),
	})
	require.NoError(t, err)
	require.NotNil(t, wrong.Marks)
	assert.InDelta(t, -0.5, *wrong.Marks, 1e-9)
}

func TestAnswerUpsertRequiresContent(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	_, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID:  attempt.ID,
		QuestionID: exam.Questions[0].ID,
		TimeSpent:  30,
	})
	assert.ErrorIs(t, err, ErrBadRequest)

	var count int64
	require.NoError(t, f.db.Model(&model.Answer{}).Where("attempt_id = ?", attempt.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count, "an empty payload must not create a row")
}

func TestAnswerUpsertLockedAfterSubmit(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	for _, status := range []model.AttemptStatus{model.StatusSubmitted, model.StatusCompleted, model.StatusEvaluated} {
		exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
		attempt := f.createAttempt(t, student.ID, exam, status)

		_, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
			AttemptID: attempt.ID, QuestionID: exam.Questions[0].ID, SelectedOption: strPtr("A"),
		})
		assert.ErrorIs(t, err, ErrLocked, "status %s must lock the answer sheet", status)
	}
}

func TestAnswerUpsertOwnership(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	owner := f.createUser(t, model.RoleStudent)
	other := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
	attempt := f.createAttempt(t, owner.ID, exam, model.StatusInProgress)

	_, err := f.answers.Upsert(other.ID, dto.AnswerUpsertRequest{
		AttemptID: attempt.ID, QuestionID: exam.Questions[0].ID, SelectedOption: strPtr("A"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAnswerUpsertQuestionFromAnotherExam(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
	otherExam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	_, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID: attempt.ID, QuestionID: otherExam.Questions[0].ID, SelectedOption: strPtr("A"),
	})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestAnswerUpdateSwitchesContentExclusively(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createDescriptiveExam(t, teacher.ID, 1, 10)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	created, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID:  attempt.ID,
		QuestionID: exam.Questions[0].ID,
		AnswerText: strPtr("first draft"),
		TimeSpent:  45,
	})
	require.NoError(t, err)
	assert.Equal(t, "first draft", *created.AnswerText)
	assert.Nil(t, created.SelectedOption)

	updated, err := f.answers.Update(created.ID, student.ID, dto.AnswerUpdateRequest{
		AnswerText: strPtr("final draft"),
		TimeSpent:  15,
	})
	require.NoError(t, err)
	assert.Equal(t, "final draft", *updated.AnswerText)
	assert.Equal(t, 60, updated.TimeSpent)
}

func TestAnswerUpdateClearsMarksWhenSwitchingToText(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 2, true, -0.5)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	created, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
		AttemptID: attempt.ID, QuestionID: exam.Questions[0].ID, SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Marks)

	updated, err := f.answers.Update(created.ID, student.ID, dto.AnswerUpdateRequest{
		AnswerText: strPtr("actually, in words"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.SelectedOption)
	assert.Nil(t, updated.Marks)
}

func TestAnswerUpdateLockedAttempt(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 1, 1, false, 0)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusSubmitted)
	answer := f.createAnswer(t, &model.Answer{
		AttemptID: attempt.ID, QuestionID: exam.Questions[0].ID, SelectedOption: strPtr("A"),
	})

	_, err := f.answers.Update(answer.ID, student.ID, dto.AnswerUpdateRequest{SelectedOption: strPtr("B")})
	assert.ErrorIs(t, err, ErrLocked)

	// The stored row is untouched.
	assert.Equal(t, "A", *f.reloadAnswer(t, answer.ID).SelectedOption)
}

func TestAnswerListByAttempt(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	other := f.createUser(t, model.RoleStudent)
	exam := f.createMCQExam(t, teacher.ID, 3, 1, false, 0)
	attempt := f.createAttempt(t, student.ID, exam, model.StatusInProgress)

	// Answer out of question order; listing restores exam order.
	for _, idx := range []int{2, 0, 1} {
		_, err := f.answers.Upsert(student.ID, dto.AnswerUpsertRequest{
			AttemptID: attempt.ID, QuestionID: exam.Questions[idx].ID, SelectedOption: strPtr("A"),
		})
		require.NoError(t, err)
	}

	answers, err := f.answers.ListByAttempt(attempt.ID, student.ID, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for i, a := range answers {
		assert.Equal(t, exam.Questions[i].ID, a.QuestionID)
	}

	_, err = f.answers.ListByAttempt(attempt.ID, other.ID, model.RoleStudent)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.answers.ListByAttempt(attempt.ID, teacher.ID, model.RoleTeacher)
	assert.NoError(t, err)
}
