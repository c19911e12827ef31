package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/middleware"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// CreateAttempt godoc
// @Summary Start a new exam attempt
// @Description Creates an IN_PROGRESS attempt for the authenticated student, subject to entitlement and the single-active-attempt rule.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt body dto.AttemptCreateRequest true "Exam to attempt"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Exam inactive or invalid body"
// @Failure 403 {object} dto.ErrorResponse "No entitlement"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already in progress"
// @Router /attempts [post]
// @Security BearerAuth
func (ctrl *AttemptController) CreateAttempt(c *gin.Context) {
	var req dto.AttemptCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AttemptCreateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.attemptService.Create(middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetAttempt godoc
// @Summary Get one attempt with its answers
// @Tags Attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{id} [get]
// @Security BearerAuth
func (ctrl *AttemptController) GetAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.attemptService.Get(attemptID, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAttempts godoc
// @Summary List attempts with filters and pagination
// @Description Students always see only their own attempts. Teachers can filter by evaluated_by to find their grading queue.
// @Tags Attempts
// @Produce json
// @Param user_id query int false "Filter by user"
// @Param exam_id query int false "Filter by exam"
// @Param status query string false "Filter by attempt status"
// @Param evaluation_status query string false "Filter by evaluation workflow status"
// @Param evaluated_by query int false "Filter by assigned evaluator"
// @Param search query string false "Match against exam title"
// @Param sort_by query string false "created_at|start_time|submit_time|score|percentage|accuracy"
// @Param sort_order query string false "asc|desc"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.AttemptListResponse
// @Router /attempts [get]
// @Security BearerAuth
func (ctrl *AttemptController) ListAttempts(c *gin.Context) {
	filter, err := parseAttemptFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ctrl.attemptService.List(filter, middleware.UserID(c), middleware.UserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateAttempt godoc
// @Summary Update an attempt
// @Description Students submit or force-close their own attempt and accumulate time spent. Teachers/admins apply the evaluation subset, including the EVALUATED transition.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param patch body dto.AttemptUpdateRequest true "Fields to change"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Illegal status transition"
// @Router /attempts/{id} [patch]
// @Security BearerAuth
func (ctrl *AttemptController) UpdateAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AttemptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AttemptUpdateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	actorID := middleware.UserID(c)
	role := middleware.UserRole(c)

	var (
		resp *dto.AttemptResponse
		err  error
	)
	if role == model.RoleStudent {
		resp, err = ctrl.attemptService.StudentUpdate(attemptID, actorID, req)
	} else {
		resp, err = ctrl.attemptService.EvaluatorUpdate(attemptID, actorID, role, req)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteAttempt godoc
// @Summary Delete an attempt and its answers
// @Tags Attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{id} [delete]
// @Security BearerAuth
func (ctrl *AttemptController) DeleteAttempt(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	isAdmin := middleware.UserRole(c) == model.RoleAdmin
	if err := ctrl.attemptService.Remove(attemptID, middleware.UserID(c), isAdmin); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignEvaluator godoc
// @Summary Assign an evaluator to an attempt
// @Description Admin-only. The evaluator must hold the teacher role. Sets evaluated_by and evaluation_status="Assigned" without changing the attempt status.
// @Tags Attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Param evaluator_id path int true "Evaluator user ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Evaluator is not a teacher"
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{id}/assign/{evaluator_id} [post]
// @Security BearerAuth
func (ctrl *AttemptController) AssignEvaluator(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	evaluatorID, ok := parseIDParam(c, "evaluator_id")
	if !ok {
		return
	}

	resp, err := ctrl.attemptService.Assign(attemptID, evaluatorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

func parseAttemptFilter(c *gin.Context) (dto.AttemptListFilter, error) {
	filter := dto.AttemptListFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, err
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if v := c.Query("exam_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, err
		}
		eid := uint(id)
		filter.ExamID = &eid
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("evaluation_status"); v != "" {
		filter.EvaluationStatus = &v
	}
	if v := c.Query("evaluated_by"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, err
		}
		eb := uint(id)
		filter.EvaluatedBy = &eb
	}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Page = page
	}
	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.PageSize = size
	}
	return filter, nil
}
