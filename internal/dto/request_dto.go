package dto

// AttemptCreateRequest starts a new attempt for an exam the caller is
// entitled to.
type AttemptCreateRequest struct {
	ExamID uint `json:"exam_id" binding:"required"`
}

// AttemptUpdateRequest is the PATCH body for /attempts/:id. Students may only
// touch Status (SUBMITTED/COMPLETED) and TimeSpent; the remaining fields are
// the evaluator subset and require the teacher or admin role. Nil means
// "leave unchanged".
type AttemptUpdateRequest struct {
	Status           *string  `json:"status" binding:"omitempty,oneof=IN_PROGRESS SUBMITTED EVALUATED COMPLETED"`
	TimeSpent        *int     `json:"time_spent" binding:"omitempty,min=0"`
	Score            *float64 `json:"score"`
	EvaluationStatus *string  `json:"evaluation_status"`
	Feedback         *string  `json:"feedback"`
	CorrectAnswers   *int     `json:"correct_answers" binding:"omitempty,min=0"`
	IncorrectAnswers *int     `json:"incorrect_answers" binding:"omitempty,min=0"`
	Unattempted      *int     `json:"unattempted" binding:"omitempty,min=0"`
	Accuracy         *float64 `json:"accuracy" binding:"omitempty,min=0,max=100"`
	Rank             *int     `json:"rank" binding:"omitempty,min=1"`
	AnswerSheetURL   *string  `json:"answer_sheet_url"`
}

// AnswerUpsertRequest creates or overwrites the single answer row for
// (attempt, question).
type AnswerUpsertRequest struct {
	AttemptID      uint    `json:"attempt_id" binding:"required"`
	QuestionID     uint    `json:"question_id" binding:"required"`
	SelectedOption *string `json:"selected_option"`
	AnswerText     *string `json:"answer_text"`
	TimeSpent      int     `json:"time_spent" binding:"omitempty,min=0"`
}

// AnswerUpdateRequest revises an existing answer. Setting SelectedOption
// clears AnswerText and vice versa; TimeSpent is added to the stored value.
type AnswerUpdateRequest struct {
	SelectedOption *string `json:"selected_option"`
	AnswerText     *string `json:"answer_text"`
	TimeSpent      int     `json:"time_spent" binding:"omitempty,min=0"`
}

// AnswerEvaluateRequest grades a single descriptive answer.
type AnswerEvaluateRequest struct {
	Marks    *float64 `json:"marks" binding:"required"`
	Feedback string   `json:"feedback"`
}

// BulkEvaluationEntry is one graded question inside a bulk evaluation.
type BulkEvaluationEntry struct {
	QuestionID uint    `json:"question_id" binding:"required"`
	Marks      float64 `json:"marks"`
	Feedback   string  `json:"feedback"`
}

// BulkEvaluateRequest finalizes an attempt: all entries are written and the
// attempt moves to EVALUATED in one transaction.
type BulkEvaluateRequest struct {
	Evaluations []BulkEvaluationEntry `json:"evaluations" binding:"required,min=1,dive"`
}

// AttemptListFilter collects the query parameters of GET /attempts.
type AttemptListFilter struct {
	UserID           *uint
	ExamID           *uint
	Status           *string
	EvaluationStatus *string
	EvaluatedBy      *uint
	Search           string
	SortBy           string
	SortOrder        string
	Page             int
	PageSize         int
}
