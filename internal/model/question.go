package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionType distinguishes auto-scorable objective questions from
// descriptive ones that need a human evaluator.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionDescriptive QuestionType = "DESCRIPTIVE"
)

type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ExamID        uint           `json:"exam_id" gorm:"not null;index"`
	Text          string         `json:"text" gorm:"type:text;not null"`
	Type          QuestionType   `json:"type" gorm:"type:varchar(16);not null"`
	Options       []string       `json:"options,omitempty" gorm:"serializer:json"`
	CorrectOption string         `json:"-" gorm:"type:text"` // never serialized to students
	Marks         float64        `json:"marks"`
	WordLimit     *int           `json:"word_limit,omitempty"`
	OrderInExam   int            `json:"order_in_exam" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
