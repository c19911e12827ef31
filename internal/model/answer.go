package model

import (
	"time"

	"gorm.io/gorm"
)

// Answer is one response to one question within an attempt. The composite
// unique index closes the race between concurrent upserts from the same
// student: at most one row may exist per (attempt, question).
type Answer struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	AttemptID  uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`
	QuestionID uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`
	Question   Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`

	// Exactly one of SelectedOption / AnswerText is meaningful, depending on
	// the question type.
	SelectedOption *string `json:"selected_option,omitempty" gorm:"type:text"`
	AnswerText     *string `json:"answer_text,omitempty" gorm:"type:text"`

	TimeSpent int `json:"time_spent"` // seconds, accumulated, never overwritten

	Marks       *float64   `json:"marks,omitempty"`
	Feedback    *string    `json:"feedback,omitempty" gorm:"type:text"`
	EvaluatedBy *uint      `json:"evaluated_by,omitempty"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
