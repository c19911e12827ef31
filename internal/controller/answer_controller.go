package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/middleware"
	"github.com/lshigami/Kestrel/internal/service"
	"github.com/rs/zerolog/log"
)

type AnswerController struct {
	answerService     service.AnswerService
	evaluationService service.EvaluationService
	suggestionService service.SuggestionService
}

func NewAnswerController(
	answerService service.AnswerService,
	evaluationService service.EvaluationService,
	suggestionService service.SuggestionService,
) *AnswerController {
	return &AnswerController{
		answerService:     answerService,
		evaluationService: evaluationService,
		suggestionService: suggestionService,
	}
}

// UpsertAnswer godoc
// @Summary Create or overwrite the answer for a question
// @Description Idempotent per (attempt, question): repeated calls converge to one row, latest write wins. Rejected once the attempt is no longer IN_PROGRESS.
// @Tags Answers
// @Accept json
// @Produce json
// @Param answer body dto.AnswerUpsertRequest true "Answer payload"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Locked attempt or question not in exam"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers [post]
// @Security BearerAuth
func (ctrl *AnswerController) UpsertAnswer(c *gin.Context) {
	var req dto.AnswerUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AnswerUpsertRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.answerService.Upsert(middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateAnswer godoc
// @Summary Revise an existing answer
// @Description Only while the attempt is IN_PROGRESS. Switching between objective and descriptive content is exclusive, and time_spent is added to the stored total.
// @Tags Answers
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param answer body dto.AnswerUpdateRequest true "Revision payload"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/{id} [patch]
// @Security BearerAuth
func (ctrl *AnswerController) UpdateAnswer(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AnswerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AnswerUpdateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.answerService.Update(answerID, middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAnswersByAttempt godoc
// @Summary List all answers for an attempt, in question order
// @Tags Answers
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {array} dto.AnswerResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/attempt/{attempt_id} [get]
// @Security BearerAuth
func (ctrl *AnswerController) ListAnswersByAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "attempt_id")
	if !ok {
		return
	}
	resp, err := ctrl.answerService.ListByAttempt(attemptID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EvaluateAnswer godoc
// @Summary Grade a single descriptive answer
// @Description Requires ownership of the exam (or admin). Writes marks and feedback without recomputing the attempt aggregate.
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param evaluation body dto.AnswerEvaluateRequest true "Marks and feedback"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not the exam's teacher"
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/{id}/evaluate [post]
// @Security BearerAuth
func (ctrl *AnswerController) EvaluateAnswer(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AnswerEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AnswerEvaluateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.evaluationService.EvaluateSingle(answerID, middleware.UserID(c), middleware.UserRole(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BulkEvaluate godoc
// @Summary Grade a batch of answers and finalize the attempt
// @Description Atomic: all answer writes plus the EVALUATED transition succeed or fail together. Entries for questions the student never answered are skipped silently. The accumulated total overwrites the attempt score.
// @Tags Evaluation
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param evaluations body dto.BulkEvaluateRequest true "Graded questions"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /answers/bulk-evaluate/{attempt_id} [post]
// @Security BearerAuth
func (ctrl *AnswerController) BulkEvaluate(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req dto.BulkEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind BulkEvaluateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.evaluationService.BulkEvaluate(attemptID, middleware.UserID(c), middleware.UserRole(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestMarks godoc
// @Summary AI-suggested marks for a descriptive answer
// @Description Advisory only, never persisted. Requires the Gemini API key to be configured.
// @Tags Evaluation
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} dto.SuggestionResponse
// @Failure 400 {object} dto.ErrorResponse "Not a descriptive answer or service unconfigured"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /answers/{id}/suggestion [get]
// @Security BearerAuth
func (ctrl *AnswerController) SuggestMarks(c *gin.Context) {
	answerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.suggestionService.SuggestForAnswer(answerID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
