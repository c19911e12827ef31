package model

import (
	"time"

	"gorm.io/gorm"
)

// TestSeries groups exams that are sold together as one purchase.
type TestSeries struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Title     string         `json:"title" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Exam is the content catalog's definition of a timed exam. The attempt core
// treats it as read-only: it defines the marking scheme and entitlement
// inputs but is never mutated here.
type Exam struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null"`
	TestSeriesID    *uint          `json:"test_series_id,omitempty" gorm:"index"`
	TeacherID       uint           `json:"teacher_id" gorm:"not null;index"`
	TotalMarks      float64        `json:"total_marks" gorm:"not null"`
	NegativeMarking bool           `json:"negative_marking"`
	CorrectMark     float64        `json:"correct_mark"`
	IncorrectMark   float64        `json:"incorrect_mark"` // signed, e.g. -0.66
	Duration        int            `json:"duration"`       // minutes
	IsFree          bool           `json:"is_free"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
