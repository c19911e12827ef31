package service

import (
	"testing"
	"time"

	"github.com/lshigami/Kestrel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccessFreeExam(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createExam(t, &model.Exam{Title: "Free Mock", TeacherID: teacher.ID, TotalMarks: 10, IsFree: true, IsActive: true})

	ok, err := f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessExamPurchase(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createExam(t, &model.Exam{Title: "Paid Mock", TeacherID: teacher.ID, TotalMarks: 10, IsActive: true})

	ok, err := f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.False(t, ok, "no purchase, no access")

	require.NoError(t, f.db.Create(&model.Purchase{
		UserID:    student.ID,
		ItemType:  model.PurchaseExam,
		ItemID:    exam.ID,
		Status:    model.PurchaseCompleted,
		ValidTill: time.Now().Add(time.Hour),
	}).Error)

	ok, err = f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessTestSeriesPurchase(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)

	series := &model.TestSeries{Title: "Banking 2026"}
	require.NoError(t, f.db.Create(series).Error)
	exam := f.createExam(t, &model.Exam{
		Title: "Series Mock", TeacherID: teacher.ID, TestSeriesID: &series.ID, TotalMarks: 10, IsActive: true,
	})

	require.NoError(t, f.db.Create(&model.Purchase{
		UserID:    student.ID,
		ItemType:  model.PurchaseTestSeries,
		ItemID:    series.ID,
		Status:    model.PurchaseCompleted,
		ValidTill: time.Now().Add(time.Hour),
	}).Error)

	ok, err := f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAccessExpiredPurchase(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createExam(t, &model.Exam{Title: "Paid Mock", TeacherID: teacher.ID, TotalMarks: 10, IsActive: true})

	require.NoError(t, f.db.Create(&model.Purchase{
		UserID:    student.ID,
		ItemType:  model.PurchaseExam,
		ItemID:    exam.ID,
		Status:    model.PurchaseCompleted,
		ValidTill: time.Now().Add(-time.Hour),
	}).Error)

	ok, err := f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccessIncompletePurchase(t *testing.T) {
	f := newFixture(t)
	teacher := f.createUser(t, model.RoleTeacher)
	student := f.createUser(t, model.RoleStudent)
	exam := f.createExam(t, &model.Exam{Title: "Paid Mock", TeacherID: teacher.ID, TotalMarks: 10, IsActive: true})

	require.NoError(t, f.db.Create(&model.Purchase{
		UserID:    student.ID,
		ItemType:  model.PurchaseExam,
		ItemID:    exam.ID,
		Status:    "pending",
		ValidTill: time.Now().Add(time.Hour),
	}).Error)

	ok, err := f.entitlement.HasAccess(student.ID, exam.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccessMissingExam(t *testing.T) {
	f := newFixture(t)
	student := f.createUser(t, model.RoleStudent)

	_, err := f.entitlement.HasAccess(student.ID, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
