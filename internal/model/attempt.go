package model

import (
	"time"

	"gorm.io/gorm"
)

// EvaluationAssigned is the workflow status stamped on an attempt when an
// admin routes it to an evaluator.
const EvaluationAssigned = "Assigned"

// EvaluationCompleted marks an attempt whose descriptive grading finished.
const EvaluationCompleted = "Completed"

// Attempt is one student's timed run through an exam.
//
// MaxScore is snapshotted from the exam at creation and never re-derived, so
// later edits to the exam cannot change how a finished attempt is read.
// Score stays nil until the first scoring pass.
type Attempt struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `json:"user_id" gorm:"not null;index:idx_attempts_user_exam"`
	ExamID uint `json:"exam_id" gorm:"not null;index:idx_attempts_user_exam"`
	Exam   Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`

	Status     AttemptStatus `json:"status" gorm:"type:varchar(16);not null;default:'IN_PROGRESS'"`
	StartTime  time.Time     `json:"start_time"`
	SubmitTime *time.Time    `json:"submit_time,omitempty"`
	EndTime    *time.Time    `json:"end_time,omitempty"`

	MaxScore         float64  `json:"max_score"`
	Score            *float64 `json:"score,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	CorrectAnswers   int      `json:"correct_answers"`
	IncorrectAnswers int      `json:"incorrect_answers"`
	Unattempted      int      `json:"unattempted"`
	Accuracy         float64  `json:"accuracy"`
	Rank             *int     `json:"rank,omitempty"`
	TimeSpent        int      `json:"time_spent"` // seconds, accumulated

	AnswerSheetURL   *string `json:"answer_sheet_url,omitempty"`
	EvaluationStatus *string `json:"evaluation_status,omitempty"`
	EvaluatedBy      *uint   `json:"evaluated_by,omitempty" gorm:"index"`
	Feedback         *string `json:"feedback,omitempty" gorm:"type:text"`

	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
