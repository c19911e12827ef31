package dto

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

// QuestionResponse exposes a question to students. The correct option is
// deliberately absent.
type QuestionResponse struct {
	ID          uint     `json:"id"`
	ExamID      uint     `json:"exam_id"`
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Marks       float64  `json:"marks"`
	WordLimit   *int     `json:"word_limit,omitempty"`
	OrderInExam int      `json:"order_in_exam"`
}

// ExamSummaryResponse is used for listing the catalog.
type ExamSummaryResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	TotalMarks    float64   `json:"total_marks"`
	Duration      int       `json:"duration"`
	IsFree        bool      `json:"is_free"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExamResponse is the full exam detail with ordered questions.
type ExamResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	TestSeriesID    *uint              `json:"test_series_id,omitempty"`
	TotalMarks      float64            `json:"total_marks"`
	NegativeMarking bool               `json:"negative_marking"`
	CorrectMark     float64            `json:"correct_mark"`
	IncorrectMark   float64            `json:"incorrect_mark"`
	Duration        int                `json:"duration"`
	IsFree          bool               `json:"is_free"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// AnswerResponse is one answer row as seen by its owner or an evaluator.
type AnswerResponse struct {
	ID             uint             `json:"id"`
	AttemptID      uint             `json:"attempt_id"`
	QuestionID     uint             `json:"question_id"`
	Question       QuestionResponse `json:"question,omitempty"`
	SelectedOption *string          `json:"selected_option,omitempty"`
	AnswerText     *string          `json:"answer_text,omitempty"`
	TimeSpent      int              `json:"time_spent"`
	Marks          *float64         `json:"marks,omitempty"`
	Feedback       *string          `json:"feedback,omitempty"`
	EvaluatedBy    *uint            `json:"evaluated_by,omitempty"`
	EvaluatedAt    *time.Time       `json:"evaluated_at,omitempty"`
}

// AttemptResponse is the full attempt resource.
type AttemptResponse struct {
	ID               uint             `json:"id"`
	UserID           uint             `json:"user_id"`
	ExamID           uint             `json:"exam_id"`
	ExamTitle        string           `json:"exam_title,omitempty"`
	Status           string           `json:"status"`
	StartTime        time.Time        `json:"start_time"`
	SubmitTime       *time.Time       `json:"submit_time,omitempty"`
	EndTime          *time.Time       `json:"end_time,omitempty"`
	MaxScore         float64          `json:"max_score"`
	Score            *float64         `json:"score,omitempty"`
	Percentage       *float64         `json:"percentage,omitempty"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	Unattempted      int              `json:"unattempted"`
	Accuracy         float64          `json:"accuracy"`
	Rank             *int             `json:"rank,omitempty"`
	TimeSpent        int              `json:"time_spent"`
	AnswerSheetURL   *string          `json:"answer_sheet_url,omitempty"`
	EvaluationStatus *string          `json:"evaluation_status,omitempty"`
	EvaluatedBy      *uint            `json:"evaluated_by,omitempty"`
	Feedback         *string          `json:"feedback,omitempty"`
	Answers          []AnswerResponse `json:"answers,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// AttemptListResponse is a paginated attempt listing.
type AttemptListResponse struct {
	Items    []AttemptResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// SuggestionResponse carries an AI-proposed grade for a descriptive answer.
// It is advisory only and never written to storage.
type SuggestionResponse struct {
	AnswerID uint    `json:"answer_id"`
	Marks    float64 `json:"marks"`
	Feedback string  `json:"feedback"`
}
